package config

import (
	"context"

	"github.com/hiraku-lab/mentor/pkg/service/docstore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Docstore holds CLI flags for the document storage backend
type Docstore struct {
	bucket string
}

func (x *Docstore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "docstore-bucket",
			Usage:       "GCS bucket for saved documents (document tools disabled when unset)",
			Category:    "Docstore",
			Sources:     cli.EnvVars("MENTOR_DOCSTORE_BUCKET"),
			Destination: &x.bucket,
		},
	}
}

// Configure creates the GCS-backed document store. Returns nil when no
// bucket is configured; the agent then runs without document tools.
func (x *Docstore) Configure(ctx context.Context) (docstore.Service, error) {
	if x.bucket == "" {
		return nil, nil
	}

	svc, err := docstore.NewGCS(ctx, x.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize document store")
	}
	return svc, nil
}
