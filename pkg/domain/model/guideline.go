package model

import (
	"time"
)

// GuidelineDocument is one version of the behavioral-rules document.
// The document is a singleton logical entity kept as an append-only version
// chain: a new version is created on every change, old versions are never
// edited or deleted, and the highest version number is the current document.
type GuidelineDocument struct {
	Version          int    // monotonic, >= 1
	Content          string // full text of the rules at this version
	DiffFromPrevious string // describes only the delta from version-1; empty for version 1
	CreatedAt        time.Time
}

// IsInitial returns true for the first version of the document
func (d *GuidelineDocument) IsInitial() bool {
	return d.Version == 1
}

// DefaultGuidelines is the seed content for version 1 when no document
// exists yet. Operators can override it via the profile TOML.
const DefaultGuidelines = `# Guidelines

## Communication Style
- Use direct, concise language
- Avoid excessive formality

## Email Preferences
- Always include a clear subject line
- Keep emails short when possible
- Be professional but friendly

## Document Formatting
- Use headers for sections
- Bullet points over paragraphs
- Prefer active voice

## Patterns Learned
(New patterns are added here as the assistant learns from feedback)

## Improvement Notes
(Ideas for new tools or capabilities; not active behavioral rules)
`
