// emitir_token firma un token de acceso para un sistema cliente con JWT_SECRET y JWT_ISSUER
// de la configuración. El token queda atado al tenant indicado.
//
// Uso: go run ./cmd/emitir_token -tenant <id> [-sujeto erp] [-vigencia 720h]
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/dte-api/pkg/config"
	pkgjwt "github.com/jhoicas/dte-api/pkg/jwt"
)

func main() {
	tenant := flag.String("tenant", "", "tenant al que pertenece el token")
	sujeto := flag.String("sujeto", "erp", "sistema cliente que usará el token")
	vigencia := flag.Duration("vigencia", 30*24*time.Hour, "vigencia del token")
	flag.Parse()

	if *tenant == "" {
		fmt.Fprintln(os.Stderr, "Falta -tenant")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.Auth.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET no está configurado: la API no valida tokens")
		os.Exit(1)
	}

	tok, err := pkgjwt.Generate(cfg.Auth.JWTSecret, *tenant, *sujeto, cfg.Auth.Issuer, *vigencia)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Firmar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Token para tenant %s (sujeto %s), vence %s\n",
		*tenant, *sujeto, time.Now().Add(*vigencia).Format(time.RFC3339))
	fmt.Println(tok)
}
