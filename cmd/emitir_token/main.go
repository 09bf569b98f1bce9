// emitir_token firma un token de acceso para la API con el JWT_SECRET configurado.
//
// Uso: go run ./cmd/emitir_token <user_id> <admin|bodeguero|consulta>
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jhoicas/obrica-api/internal/application/auth"
	"github.com/jhoicas/obrica-api/internal/application/dto"
	"github.com/jhoicas/obrica-api/pkg/config"
	"github.com/jhoicas/obrica-api/pkg/logger"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "uso: emitir_token <user_id> <admin|bodeguero|consulta>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: "development", Level: cfg.App.LogLevel})

	issuer := auth.NewTokenIssuer(auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	out, err := issuer.Issue(dto.TokenRequest{UserID: os.Args[1], Role: os.Args[2]})
	if err != nil {
		log.Fatal().Err(err).Msg("emitir token")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("escribir token")
	}
}
