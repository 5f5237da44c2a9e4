package config

import (
	"fmt"
	"os"
)

// Defaults returns the built-in configuration values. The commented template
// written by `clpack init` must stay in sync with these (enforced by a test).
func Defaults() map[string]any {
	return map[string]any{
		"data_folder":            "changelog",
		"default_channel":        "default",
		"changelog_file_default": "CHANGELOG.md",
		"changelog_file_channel": "CHANGELOG-{CHANNEL}.md",
		"changelog_header":       "# Changelog\n\n",
		"release_header":         "[{VERSION}] - {DATE}",
		"date_format":            "2006-01-02",
		"sections":               []string{"Fixes", "Improvements", "New features", "Internal"},
		"channels": []map[string]any{
			{"id": "default", "branch": "/^(?:main|master)$/"},
		},
		"branch_issue_pattern":   `/^((?:SW-)?\d+)-.*/`,
		"branch_version_pattern": `/^rel\/([\d.]+)$/`,

		"integrations.youtrack.enabled":        false,
		"integrations.youtrack.url":            "https://example.youtrack.cloud",
		"integrations.youtrack.channels":       []string{"default"},
		"integrations.youtrack.released_state": "",
		"integrations.youtrack.version_field":  "",
	}
}

// DefaultConfigTemplate is the commented config file written by `clpack init`.
// Every value matches Defaults().
const DefaultConfigTemplate = `# clpack configuration
# All values shown are the defaults; delete anything you do not override.

# Name of the folder managed by clpack, relative to the project root
data_folder: changelog

# Id of the default channel (must appear in 'channels')
default_channel: default

# Changelog file for the default channel, relative to the project root
changelog_file_default: CHANGELOG.md

# Changelog file for other channels; supports {channel}, {Channel}, {CHANNEL}
changelog_file_channel: CHANGELOG-{CHANNEL}.md

# Title of the changelog file, stripped and put back in front on every release
changelog_header: "# Changelog\n\n"

# Release header template; {VERSION} and {DATE} are substituted at render time
release_header: "[{VERSION}] - {DATE}"

# Date format as a Go time layout (https://pkg.go.dev/time#pkg-constants)
date_format: "2006-01-02"

# Changelog sections offered when logging an entry; output keeps this order.
# Entry files may also use ad hoc section names.
sections:
  - Fixes
  - Improvements
  - New features
  - Internal

# Release channels, in prompt order. 'branch' recognizes the channel from the
# current git branch: either a literal branch name or a regex encased in
# slashes. Leave 'branch' empty for channels that are only chosen manually.
channels:
  - id: default
    branch: "/^(?:main|master)$/"

# Regex (slash-encased, one capture group) extracting an issue id from a
# branch name, e.g. SW-1234 from SW-1234-fix-crash. Empty disables it.
branch_issue_pattern: "/^((?:SW-)?\\d+)-.*/"

# Regex (slash-encased, one capture group) extracting a version seed from a
# branch name, e.g. 3.40 from rel/3.40. Empty disables it.
branch_version_pattern: "/^rel\\/([\\d.]+)$/"

integrations:
  youtrack:
    # Mark issues as released in YouTrack after a successful pack.
    # The API token is read from the CLPACK_YOUTRACK_TOKEN environment variable.
    enabled: false
    url: https://example.youtrack.cloud
    # Only releases on these channels are synced
    channels:
      - default
    # Name of the State option to switch issues to (e.g. Released)
    released_state: ""
    # Name of the version custom field (e.g. Available in version)
    version_field: ""
`

// WriteDefault writes the commented default config template to path.
// Fails if the file already exists.
func WriteDefault(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating config file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(DefaultConfigTemplate); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}
