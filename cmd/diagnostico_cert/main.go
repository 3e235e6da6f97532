// diagnostico_cert revisa el certificado .p12 configurado (MH_CERT_PATH / MH_CERT_PASSWORD)
// antes de levantar la API: lectura del archivo, contraseña, vigencia y una firma de prueba.
//
// Uso: go run ./cmd/diagnostico_cert [ruta.p12]
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/dte-api/internal/infrastructure/mh/signer"
	"github.com/jhoicas/dte-api/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	certPath := cfg.MH.CertPath
	if len(os.Args) > 1 {
		certPath = os.Args[1]
	}
	if certPath == "" {
		fmt.Fprintln(os.Stderr, "Falta la ruta del certificado: MH_CERT_PATH o primer argumento")
		os.Exit(1)
	}

	fmt.Println("Diagnóstico de certificado MH")
	fmt.Printf("Archivo: %s\n", certPath)

	p12, err := os.ReadFile(certPath)
	if err != nil {
		fmt.Printf("ERROR de archivo: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Archivo leído: %d bytes\n", len(p12))

	s := signer.NewSigner()
	info, err := s.LoadCertificate(p12, cfg.MH.CertPassword)
	if err != nil {
		fmt.Printf("ERROR de contraseña o formato: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sujeto:   %s\n", info.SubjectCN)
	fmt.Printf("Emisor:   %s\n", info.IssuerCN)
	fmt.Printf("Serie:    %s\n", info.Serial)
	fmt.Printf("Vigencia: %s a %s\n", info.NotBefore.Format(time.DateOnly), info.NotAfter.Format(time.DateOnly))

	if !info.Vigente(time.Now()) {
		fmt.Println("ERROR: el certificado no está vigente hoy")
		os.Exit(1)
	}

	jws, err := s.SignDTE(map[string]any{"diagnostico": true, "fecha": time.Now().Format(time.DateOnly)})
	if err != nil {
		fmt.Printf("ERROR al firmar: %v\n", err)
		os.Exit(1)
	}
	if res := s.VerifySignature(jws); !res.Valid {
		fmt.Printf("ERROR al verificar la firma de prueba: %s\n", res.Error)
		os.Exit(1)
	}
	fmt.Println("Firma de prueba RS256 generada y verificada.")
	fmt.Println("Certificado público (para /api/firma/verificar):")
	fmt.Print(string(signer.CertificatePEM(s.Certificate())))
}
