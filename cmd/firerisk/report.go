package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"firerisk/internal/db"
	"firerisk/internal/report"
	"firerisk/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var reportCommand = &cli.Command{
	Name:  "report",
	Usage: "Render an assessment report to an HTML file",
	Flags: []cli.Flag{
		&cli.Int64Flag{
			Name:     "assessment-id",
			Aliases:  []string{"a"},
			Usage:    "Assessment to report on",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output directory",
			Value:   ".",
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

		assessmentID := c.Int64("assessment-id")

		assessment, err := store.NewAssessmentRepository(pool).Assessment(ctx, assessmentID)
		if err != nil {
			return err
		}

		findings, err := store.NewFindingRepository(pool).FindingsByAssessment(ctx, assessmentID)
		if err != nil {
			return err
		}

		conversation, err := store.NewConversationRepository(pool).History(ctx, assessmentID)
		if err != nil {
			return err
		}

		now := time.Now()
		html, err := report.Render(&report.Data{
			Assessment:   assessment,
			Findings:     findings,
			Conversation: conversation,
			GeneratedAt:  now,
		})
		if err != nil {
			return err
		}

		path := filepath.Join(c.String("out"), report.FileName(assessment.BuildingName, now))
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"assessment_id": assessmentID,
			"findings":      len(findings),
			"path":          path,
		}).Info("report written")

		return nil
	},
}
