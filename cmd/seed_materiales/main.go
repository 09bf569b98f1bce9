// seed_materiales genera el script SQL con el catálogo inicial de materiales
// a partir del almacen.csv histórico (UTF-8 o ISO-8859-1).
//
// Uso: go run ./cmd/seed_materiales [ruta/almacen.csv]
// Por defecto busca almacen.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_materiales.sql
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/obrica-api/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{Env: "development", Level: "info"})

	csvPath := "almacen.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	raw, err := os.ReadFile(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("archivo", csvPath).Msg("abrir CSV")
	}

	in, latin1 := decodeInput(raw)
	if latin1 {
		log.Info().Msg("entrada en ISO-8859-1, convirtiendo a UTF-8")
	}
	res, err := parseAlmacen(in)
	if err != nil {
		log.Fatal().Err(err).Msg("leer almacen.csv")
	}
	for _, s := range res.Skipped {
		log.Warn().Msg(s)
	}

	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "002_seed_materiales.sql")
	out, err := os.Create(outPath)
	if err != nil {
		log.Fatal().Err(err).Msg("crear archivo")
	}
	defer out.Close()

	if err := writeSeedSQL(out, res.Rows); err != nil {
		log.Fatal().Err(err).Msg("escribir SQL")
	}
	fmt.Printf("Generado %s: %d materiales (%d omitidos)\n", outPath, len(res.Rows), len(res.Skipped))
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
