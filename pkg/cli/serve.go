package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hiraku-lab/mentor/pkg/cli/config"
	httpctrl "github.com/hiraku-lab/mentor/pkg/controller/http"
	"github.com/hiraku-lab/mentor/pkg/usecase"
	"github.com/hiraku-lab/mentor/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var slackCfg config.Slack
	var agentCfg config.Agent
	var profileCfg config.Profile
	var mailboxCfg config.Mailbox
	var docstoreCfg config.Docstore

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MENTOR_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, agentCfg.Flags()...)
	flags = append(flags, profileCfg.Flags()...)
	flags = append(flags, mailboxCfg.Flags()...)
	flags = append(flags, docstoreCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server with the Slack gateway",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM client")
			}

			cfg := agentCfg.Configure()

			profile, err := profileCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load profile")
			}
			if profile != nil {
				logger.Info("Profile loaded", "user", profile.User.Name)
				cfg.DefaultGuidelines = profile.GuidelineSeed(cfg.DefaultGuidelines)
			}

			ucOpts := []usecase.Option{
				usecase.WithConfig(cfg),
			}

			mailSvc, err := mailboxCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure mailbox")
			}
			if mailSvc != nil {
				ucOpts = append(ucOpts, usecase.WithMailbox(mailSvc))
				logger.Info("Gmail service enabled")
			} else {
				logger.Info("Gmail credentials not configured, mail tools disabled")
			}

			docsSvc, err := docstoreCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure document store")
			}
			if docsSvc != nil {
				ucOpts = append(ucOpts, usecase.WithDocstore(docsSvc))
				logger.Info("Document store enabled")
			} else {
				logger.Info("Document store bucket not configured, document tools disabled")
			}

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack service")
			}
			if slackSvc != nil {
				ucOpts = append(ucOpts, usecase.WithSlackService(slackSvc))
				logger.Info("Slack service enabled")
			}

			ucs := usecase.New(repo, llmClient, ucOpts...)

			var httpOpts []httpctrl.Options
			if slackCfg.IsWebhookConfigured() {
				webhookHandler := httpctrl.NewSlackWebhookHandler(ucs.Slack)
				httpOpts = append(httpOpts, httpctrl.WithSlackWebhook(webhookHandler, slackCfg.SigningSecret()))
				logger.Info("Slack webhook handler enabled")
			} else {
				logger.Warn("Slack webhook not configured, event endpoint disabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
