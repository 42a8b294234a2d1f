// Package main provides the pipeboard CLI: validate, format and inspect
// workflow files without running the API server.
package main

import (
	"context"
	"os"

	"github.com/pipeboard/pipeboard/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func main() {
	logger := log.WithModule("cli")

	command := &cli.Command{
		Name:                  "pipeboard",
		Usage:                 "Work with CI workflow files",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			NewValidateCommand(),
			NewFmtCommand(),
			NewGraphCommand(),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Failed to run pipeboard", "error", err)
		os.Exit(1)
	}
}
