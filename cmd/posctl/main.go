package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"stockpos/backend/internal/config"
	"stockpos/backend/internal/logger"
	"stockpos/backend/internal/service"
	pgstore "stockpos/backend/internal/store/postgres"
)

type storeKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func openStore(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	pg, err := pgstore.New(ctx, c.String("db-url"), 1)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	c.Context = context.WithValue(c.Context, storeKey{}, pg)
	return nil
}

func closeStore(c *cli.Context) error {
	if pg, ok := c.Context.Value(storeKey{}).(*pgstore.Store); ok && pg != nil {
		return pg.Close()
	}
	return nil
}

func storeFrom(c *cli.Context) *pgstore.Store {
	pg, _ := c.Context.Value(storeKey{}).(*pgstore.Store)
	return pg
}

func serviceFrom(c *cli.Context, cfg config.Config) *service.Service {
	return service.New(storeFrom(c), nil, cfg.Location(), cfg.ReportCacheTTL())
}

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogFormat, cfg.LogLevel)

	app := &cli.App{
		Name:  "posctl",
		Usage: "Operate the stockpos database",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply the embedded schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: openStore,
				After:  closeStore,
				Action: func(c *cli.Context) error {
					if err := storeFrom(c).Migrate(c.Context); err != nil {
						return err
					}
					logger.Log.Info().Msg("schema applied")
					return nil
				},
			},
			{
				Name:  "create-admin",
				Usage: "Create an admin account unless the email is already registered",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Admin email address",
						Required: true,
						EnvVars:  []string{"ADMIN_EMAIL"},
					},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "Admin password",
						Required: true,
						EnvVars:  []string{"ADMIN_PASSWORD"},
					},
				},
				Before: openStore,
				After:  closeStore,
				Action: func(c *cli.Context) error {
					svc := serviceFrom(c, cfg)
					if err := svc.EnsureAdmin(c.Context, c.String("email"), c.String("password")); err != nil {
						return fmt.Errorf("create admin: %w", err)
					}
					logger.Log.Info().Str("email", c.String("email")).Msg("admin account ready")
					return nil
				},
			},
			{
				Name:   "seed",
				Usage:  "Load a demo catalog (categories, a supplier and products)",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: openStore,
				After:  closeStore,
				Action: func(c *cli.Context) error {
					result, err := seedCatalog(c.Context, serviceFrom(c, cfg))
					if err != nil {
						return err
					}
					logger.Log.Info().
						Int("categories", result.Categories).
						Int("suppliers", result.Suppliers).
						Int("products", result.Products).
						Int("skipped", result.Skipped).
						Msg("demo catalog seeded")
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("posctl failed")
	}
}
