package main

import (
	"context"
	"fmt"

	"firerisk/internal/db"
	"firerisk/internal/seed"
	"firerisk/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Sync the reference fire standards",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		standardRepo := store.NewStandardRepository(pool)

		logrus.Info("Seeding fire standards...")
		if err := seed.SeedStandards(ctx, standardRepo); err != nil {
			return fmt.Errorf("failed to seed standards: %w", err)
		}

		logrus.Info("Fire standards seeded successfully")

		return nil
	},
}
