package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/hiraku-lab/mentor/pkg/utils/logging"
	"github.com/m-mizutani/gt"
)

func TestParseLevel(t *testing.T) {
	level, err := logging.ParseLevel("debug")
	gt.NoError(t, err)
	gt.Value(t, level).Equal(slog.LevelDebug)

	_, err = logging.ParseLevel("verbose")
	gt.Error(t, err)
}

func TestSecretRedaction(t *testing.T) {
	type cred struct {
		Name  string
		Token string `masq:"secret"`
	}

	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)
	logger.Info("connect", "cred", cred{Name: "gmail", Token: "xoxb-secret"})

	var record map[string]any
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &record)).Required()
	gt.Bool(t, bytes.Contains(buf.Bytes(), []byte("xoxb-secret"))).False()
}

func TestContextLogger(t *testing.T) {
	ctx := context.Background()
	gt.Value(t, logging.From(ctx)).Equal(logging.Default())

	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)
	ctx = logging.With(ctx, logger)
	gt.Value(t, logging.From(ctx)).Equal(logger)
}
