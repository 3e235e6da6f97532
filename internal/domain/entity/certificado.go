package entity

import "time"

// Certificado .p12 del emisor guardado por tenant (uno vigente por tenant).
type Certificado struct {
	TenantID  string
	P12       []byte
	Password  string
	SubjectCN string
	IssuerCN  string
	Serial    string
	NotBefore time.Time
	NotAfter  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
