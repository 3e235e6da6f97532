package mh_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dte-api/pkg/mh"
)

func TestValidarNumeroControl_AncladoAlTipo(t *testing.T) {
	nc := "DTE-01-00000001-000000000000001"

	assert.True(t, mh.ValidarNumeroControl(nc, "01"))
	assert.False(t, mh.ValidarNumeroControl(nc, "03"), "un número de control de Factura no es válido para CCF")
}

func TestValidarNumeroControl_Formatos(t *testing.T) {
	casos := []struct {
		nc, tipo string
		ok       bool
	}{
		{"DTE-03-M001P001-000000000000123", "03", true},
		{"DTE-03-m001p001-000000000000123", "03", false}, // minúsculas
		{"DTE-03-M001P01-000000000000123", "03", false},  // establecimiento de 7
		{"DTE-03-M001P001-00000000000123", "03", false},  // correlativo de 14
		{"DTE-03-M001P001-000000000000123 ", "03", false},
		{"DTE-.*-M001P001-000000000000123", ".*", false},
		{"DTE-05-00000001-000000000000001", "5", false},
	}
	for _, c := range casos {
		assert.Equal(t, c.ok, mh.ValidarNumeroControl(c.nc, c.tipo), "%s / %s", c.nc, c.tipo)
	}
}

func TestValidarCodigoGeneracion(t *testing.T) {
	assert.True(t, mh.ValidarCodigoGeneracion("D3B4C2A1-0F6E-4B5A-9C8D-7E6F5A4B3C2D"))
	assert.False(t, mh.ValidarCodigoGeneracion("d3b4c2a1-0f6e-4b5a-9c8d-7e6f5a4b3c2d"), "debe estar en mayúsculas")
	assert.False(t, mh.ValidarCodigoGeneracion("D3B4C2A10F6E4B5A9C8D7E6F5A4B3C2D"), "requiere guiones")
}

func TestValidarDepartamento(t *testing.T) {
	for cod := range mh.Departamentos {
		assert.True(t, mh.ValidarDepartamento(cod), cod)
	}
	for _, cod := range []string{"00", "15", "1", "010", "6"} {
		assert.False(t, mh.ValidarDepartamento(cod), cod)
	}
}

func TestValidarDui(t *testing.T) {
	require.NoError(t, mh.ValidarDui("12345678-4"))
	require.NoError(t, mh.ValidarDui("00000000-0"))

	err := mh.ValidarDui("12345678-5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dígito verificador")

	assert.Error(t, mh.ValidarDui("123456784"), "sin guion no cumple el formato")
}

func TestComputeDuiVerificationDigit(t *testing.T) {
	dv, err := mh.ComputeDuiVerificationDigit("12345678")
	require.NoError(t, err)
	assert.Equal(t, byte('4'), dv)

	_, err = mh.ComputeDuiVerificationDigit("1234")
	assert.Error(t, err)
}

func TestValidarNit(t *testing.T) {
	assert.NoError(t, mh.ValidarNit("06142803901121"))
	assert.NoError(t, mh.ValidarNit("123456784"), "NIT homologado con DUI válido")
	assert.Error(t, mh.ValidarNit("123456785"), "NIT homologado con verificador inválido")
	assert.Error(t, mh.ValidarNit("0614-280390-112-1"), "no admite guiones")
}

func TestTipoDte_Catalogo(t *testing.T) {
	assert.Equal(t, 1, mh.TipoFactura.Version())
	assert.Equal(t, 3, mh.TipoCCF.Version())
	assert.True(t, mh.TipoCCF.RequiereReceptor())
	assert.False(t, mh.TipoFactura.RequiereReceptor())
	assert.True(t, mh.TipoNotaCredito.RequiereDocumentoRelacionado())
	assert.False(t, mh.TipoDte("99").Soportado())
	assert.Equal(t, []mh.TipoDte{"01", "03", "05", "06"}, mh.TiposSoportados())
}
