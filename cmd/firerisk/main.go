package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "firerisk",
		Usage: "Conversational fire risk assessment service",
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			seedCommand,
			reportCommand,
			findingsCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
