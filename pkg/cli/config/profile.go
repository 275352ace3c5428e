package config

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// ProfileFile is the operator-provided TOML profile describing the user the
// assistant works for and optional overrides of the seed guidelines
type ProfileFile struct {
	User struct {
		Name  string `toml:"name"`
		Email string `toml:"email"`
		// Language the assistant should reply in, e.g. "English" or
		// "Japanese". Empty leaves the guideline document's default.
		Language string `toml:"language"`
	} `toml:"user"`

	Guidelines struct {
		// Content replaces the built-in default guideline document used
		// to seed version 1 for new users
		Content string `toml:"content"`
	} `toml:"guidelines"`
}

// Validate checks if the ProfileFile is valid
func (p *ProfileFile) Validate() error {
	if p.User.Name == "" {
		return goerr.New("profile user.name is required")
	}
	return nil
}

// Profile holds the CLI flag for the profile file location
type Profile struct {
	path string
}

func (x *Profile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "profile",
			Usage:       "Path to the user profile TOML file",
			Category:    "Profile",
			Sources:     cli.EnvVars("MENTOR_PROFILE"),
			Destination: &x.path,
		},
	}
}

// Configure loads and validates the profile. Returns nil when no profile
// path is configured.
func (x *Profile) Configure() (*ProfileFile, error) {
	if x.path == "" {
		return nil, nil
	}
	return LoadProfile(x.path)
}

// LoadProfile reads and validates a profile TOML file
func LoadProfile(path string) (*ProfileFile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read profile file", goerr.V("path", path))
	}

	var profile ProfileFile
	if err := toml.Unmarshal(data, &profile); err != nil {
		return nil, goerr.Wrap(err, "failed to parse profile TOML", goerr.V("path", path))
	}
	if err := profile.Validate(); err != nil {
		return nil, goerr.Wrap(err, "profile validation failed", goerr.V("path", path))
	}

	return &profile, nil
}

// GuidelineSeed returns the guideline document seeded from the profile,
// falling back to fallback when the profile carries no content. A configured
// reply language is appended as a rule.
func (p *ProfileFile) GuidelineSeed(fallback string) string {
	content := p.Guidelines.Content
	if content == "" {
		content = fallback
	}
	if p.User.Language != "" {
		content = strings.TrimRight(content, "\n") +
			"\n- Always reply in " + p.User.Language + ".\n"
	}
	return content
}
