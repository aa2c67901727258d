// migrate aplica o revierte los scripts de migrations/ sobre la base configurada.
//
// Uso: go run ./cmd/migrate [up|down] [-dir migrations]
// down revierte sólo la última migración aplicada.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/postgres"
	"github.com/adanjr/inventory-management-sub000/pkg/config"
	"github.com/adanjr/inventory-management-sub000/pkg/logger"
)

func main() {
	dir := flag.String("dir", "migrations", "directorio de scripts .sql")
	flag.Parse()
	direction := flag.Arg(0)
	if direction == "" {
		direction = "up"
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if direction != "up" && direction != "down" {
		log.Fatal().Str("direction", direction).Msg("dirección inválida (up|down)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conectar a PostgreSQL")
	}
	defer pool.Close()

	done, err := postgres.Migrate(ctx, pool, os.DirFS(*dir), direction == "up")
	for _, v := range done {
		log.Info().Str("version", v).Str("direction", direction).Msg("migración ejecutada")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("migrar")
	}
	if len(done) == 0 {
		log.Info().Msg("sin migraciones pendientes")
	}
}
