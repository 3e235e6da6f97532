// Package jwt emite y valida los tokens HS256 de acceso a la API. Cada token queda atado a un
// tenant; no confundir con el JWS RS256 con que se firman los DTE.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalido firma incorrecta, token vencido o sin tenant.
var ErrTokenInvalido = errors.New("jwt: token inválido")

// Claims claims estándar más el tenant al que pertenece el token.
type Claims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id"`
}

// Generate firma un token para el tenant. subject identifica al sistema cliente.
func Generate(secret, tenantID, subject, issuer string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	if tenantID == "" {
		return "", fmt.Errorf("jwt: tenant vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TenantID: tenantID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse valida firma y vigencia y devuelve el tenant y el subject.
func Parse(secret, tokenString string) (tenantID, subject string, err error) {
	if secret == "" {
		return "", "", fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrTokenInvalido, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TenantID == "" {
		return "", "", ErrTokenInvalido
	}
	return claims.TenantID, claims.Subject, nil
}
