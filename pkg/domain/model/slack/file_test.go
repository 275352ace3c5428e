package slack_test

import (
	"testing"

	"github.com/hiraku-lab/mentor/pkg/domain/model/slack"
	"github.com/m-mizutani/gt"
	libslack "github.com/slack-go/slack"
)

func TestNewFileFromSlack(t *testing.T) {
	slackFile := libslack.File{
		ID:         "F12345",
		Name:       "lease.pdf",
		Mimetype:   "application/pdf",
		Size:       204800,
		URLPrivate: "https://files.slack.com/files-pri/T123-F12345/lease.pdf",
	}

	f := slack.NewFileFromSlack(slackFile)

	gt.Value(t, f.ID()).Equal("F12345")
	gt.Value(t, f.Name()).Equal("lease.pdf")
	gt.Value(t, f.Mimetype()).Equal("application/pdf")
	gt.Value(t, f.Size()).Equal(204800)
	gt.Value(t, f.URLPrivate()).Equal("https://files.slack.com/files-pri/T123-F12345/lease.pdf")
	gt.Value(t, f.Describe()).Equal("lease.pdf (application/pdf, 204800 bytes)")
}
