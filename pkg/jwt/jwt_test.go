package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/dte-api/pkg/jwt"
)

const secreto = "test-secret-key-for-unit-tests"

func TestGenerateYParse(t *testing.T) {
	tok, err := pkgjwt.Generate(secreto, "tenant-1", "erp-ventas", "dte-api-test", time.Hour)
	require.NoError(t, err)

	tenant, subject, err := pkgjwt.Parse(secreto, tok)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", tenant)
	assert.Equal(t, "erp-ventas", subject)
}

func TestParse_SecretoIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(secreto, "tenant-1", "erp", "dte-api-test", time.Hour)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otro-secreto", tok)
	assert.ErrorIs(t, err, pkgjwt.ErrTokenInvalido)
}

func TestParse_Vencido(t *testing.T) {
	tok, err := pkgjwt.Generate(secreto, "tenant-1", "erp", "dte-api-test", -time.Minute)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(secreto, tok)
	assert.ErrorIs(t, err, pkgjwt.ErrTokenInvalido)
}

func TestGenerate_SinTenant(t *testing.T) {
	_, err := pkgjwt.Generate(secreto, "", "erp", "dte-api-test", time.Hour)
	assert.Error(t, err)
}
