package main

import (
	"context"
	"fmt"

	"firerisk/internal/db"
	"firerisk/internal/report"
	"firerisk/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var findingsCommand = &cli.Command{
	Name:  "findings",
	Usage: "Print an assessment's findings in rank order",
	Flags: []cli.Flag{
		&cli.Int64Flag{
			Name:     "assessment-id",
			Aliases:  []string{"a"},
			Usage:    "Assessment to inspect",
			Required: true,
		},
	},
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

		findings, err := store.NewFindingRepository(pool).FindingsByAssessment(ctx, c.Int64("assessment-id"))
		if err != nil {
			return err
		}

		pp.Println(findings)
		fmt.Printf("\n%d findings, overall risk %s\n", len(findings), report.OverallRisk(findings))

		return nil
	},
}
