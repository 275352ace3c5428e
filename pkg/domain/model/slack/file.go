package slack

import (
	"fmt"

	libslack "github.com/slack-go/slack"
)

// File represents a Slack file attachment metadata
type File struct {
	id         string
	name       string
	mimetype   string
	size       int
	urlPrivate string
}

// NewFileFromSlack creates a File from a slack-go File struct
func NewFileFromSlack(f libslack.File) File {
	return File{
		id:         f.ID,
		name:       f.Name,
		mimetype:   f.Mimetype,
		size:       f.Size,
		urlPrivate: f.URLPrivate,
	}
}

// Getters
func (f File) ID() string         { return f.id }
func (f File) Name() string       { return f.name }
func (f File) Mimetype() string   { return f.mimetype }
func (f File) Size() int          { return f.size }
func (f File) URLPrivate() string { return f.urlPrivate }

// Describe renders the attachment as a single line suitable for inclusion
// in the reasoning context, e.g. "lease.pdf (application/pdf, 204800 bytes)".
func (f File) Describe() string {
	return fmt.Sprintf("%s (%s, %d bytes)", f.name, f.mimetype, f.size)
}
