// seed provisiona cuentas, perfiles (usuarios/{uid}) y el directorio de lojas en PostgreSQL
// a partir de un archivo YAML.
//
// Uso: go run ./cmd/seed [ruta/provision.yaml]
// Sin argumento usa SEED_FILE y, si no está definido, provision.yaml del directorio actual.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/emprestei/internal/application/auth"
	"github.com/jhoicas/emprestei/internal/application/provision"
	"github.com/jhoicas/emprestei/internal/application/realtime"
	"github.com/jhoicas/emprestei/internal/infrastructure/postgres"
	"github.com/jhoicas/emprestei/pkg/config"
	"github.com/jhoicas/emprestei/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.DB.Driver != config.DriverPostgres {
		fmt.Fprintln(os.Stderr, "seed solo aplica a DB_DRIVER=postgres; con memory use SEED_FILE en la API")
		os.Exit(1)
	}

	path := cfg.App.SeedFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		path = "provision.yaml"
	}
	fixture, err := provision.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Provisión: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	svc := realtime.NewService(postgres.NewNodeRepository(pool), log.Zerolog())
	defer svc.Close()
	authUC := auth.NewAuthUseCase(postgres.NewAccountRepository(pool), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	sum, err := provision.NewProvisioner(authUC, svc, log.Zerolog()).Apply(ctx, fixture)
	if err != nil {
		log.Error().Err(err).Msg("provisión incompleta")
		pool.Close()
		os.Exit(1)
	}
	fmt.Printf("Lojas: %d\nContas criadas: %d (existentes: %d)\nPerfis: %d\n",
		sum.Stores, sum.AccountsCreated, sum.AccountsExisted, sum.Profiles)
}
