package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hiraku-lab/mentor/pkg/cli/config"
	"github.com/m-mizutani/gt"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.toml")
	err := os.WriteFile(path, []byte(content), 0600)
	gt.NoError(t, err).Required()
	return path
}

func TestLoadProfile(t *testing.T) {
	t.Run("full profile", func(t *testing.T) {
		path := writeProfile(t, `
[user]
name = "Hiraku"
email = "hiraku@example.com"
language = "Japanese"

[guidelines]
content = """
# Guidelines

## Communication Style
- Be brief.
"""
`)

		profile, err := config.LoadProfile(path)
		gt.NoError(t, err).Required()

		gt.Value(t, profile.User.Name).Equal("Hiraku")
		gt.Value(t, profile.User.Email).Equal("hiraku@example.com")
		gt.Value(t, profile.User.Language).Equal("Japanese")
		gt.String(t, profile.Guidelines.Content).Contains("## Communication Style")
	})

	t.Run("missing user name", func(t *testing.T) {
		path := writeProfile(t, `
[user]
email = "someone@example.com"
`)

		_, err := config.LoadProfile(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := config.LoadProfile(filepath.Join(t.TempDir(), "missing.toml"))
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid TOML", func(t *testing.T) {
		path := writeProfile(t, `[user`)

		_, err := config.LoadProfile(path)
		gt.Value(t, err).NotNil()
	})
}

func TestProfileGuidelineSeed(t *testing.T) {
	t.Run("falls back to default content", func(t *testing.T) {
		var profile config.ProfileFile
		profile.User.Name = "Hiraku"

		seed := profile.GuidelineSeed("# Default\n- Rule one.\n")
		gt.String(t, seed).Contains("Rule one")
	})

	t.Run("profile content wins", func(t *testing.T) {
		var profile config.ProfileFile
		profile.User.Name = "Hiraku"
		profile.Guidelines.Content = "# Mine\n- Custom rule.\n"

		seed := profile.GuidelineSeed("# Default\n- Rule one.\n")
		gt.String(t, seed).Contains("Custom rule")
		gt.Bool(t, seed == "# Default\n- Rule one.\n").False()
	})

	t.Run("language appended as rule", func(t *testing.T) {
		var profile config.ProfileFile
		profile.User.Name = "Hiraku"
		profile.User.Language = "Japanese"

		seed := profile.GuidelineSeed("# Default\n- Rule one.\n")
		gt.String(t, seed).Contains("Always reply in Japanese.")
	})
}
