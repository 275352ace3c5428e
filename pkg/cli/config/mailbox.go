package config

import (
	"context"

	"github.com/hiraku-lab/mentor/pkg/service/mailbox"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// Mailbox holds CLI flags for the Gmail integration
type Mailbox struct {
	credentialsFile string
}

func (x *Mailbox) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gmail-credentials",
			Usage:       "Path to Gmail OAuth credentials JSON (mail tools disabled when unset)",
			Category:    "Mailbox",
			Sources:     cli.EnvVars("MENTOR_GMAIL_CREDENTIALS"),
			Destination: &x.credentialsFile,
		},
	}
}

// Configure creates the Gmail-backed mailbox service. Returns nil when no
// credentials are configured; the agent then runs without mail tools.
func (x *Mailbox) Configure(ctx context.Context) (mailbox.Service, error) {
	if x.credentialsFile == "" {
		return nil, nil
	}

	svc, err := mailbox.NewGmail(ctx, option.WithCredentialsFile(x.credentialsFile))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize gmail service")
	}
	return svc, nil
}
