package cli

import (
	"context"

	"github.com/hiraku-lab/mentor/pkg/cli/config"
	"github.com/hiraku-lab/mentor/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closer func()
	var sentryFlush func()

	app := &cli.Command{
		Name:    "mentor",
		Usage:   "Mentor personal AI assistant",
		Version: version,
		Flags:   append(loggerCfg.Flags(), sentryCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			flush, err := sentryCfg.Configure()
			if err != nil {
				return ctx, err
			}
			sentryFlush = flush

			logging.Default().Info("Starting mentor", "logger", loggerCfg, "sentry", sentryCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if sentryFlush != nil {
				sentryFlush()
			}
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdChat(),
			cmdGuidelines(),
			cmdMigrate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
