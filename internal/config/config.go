// Package config loads and validates the clpack project configuration using koanf.
// Values are layered with priority: environment variables (CLPACK_*) > config file
// (clpack.yml, legacy clpack.json) > defaults. The config file lives at the project
// root next to the changelog data directory it describes.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileName is the default config file name, resolved relative to the project root.
const FileName = "clpack.yml"

// LegacyFileName is the deprecated JSON config file name, still read with a warning.
const LegacyFileName = "clpack.json"

// EnvYouTrackURL overrides the YouTrack server URL from the integration config.
const EnvYouTrackURL = "CLPACK_YOUTRACK_URL"

// EnvYouTrackToken supplies the YouTrack API token. Never stored in config.
const EnvYouTrackToken = "CLPACK_YOUTRACK_TOKEN"

// ChannelConfig declares one release channel and how to recognize it from a
// git branch name. Branch is either a literal branch name or a regex encased
// in slashes (e.g. "/^rel\\/.*/"); empty means the channel is only selectable
// manually.
type ChannelConfig struct {
	ID     string `koanf:"id" validate:"required"`
	Branch string `koanf:"branch"`
}

// YouTrackConfig configures the issue-tracker synchronization run after a
// successful pack.
type YouTrackConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
	// Channels lists the channel ids whose releases are synced.
	Channels []string `koanf:"channels"`
	// ReleasedState is the issue State to switch to (e.g. "Released").
	ReleasedState string `koanf:"released_state"`
	// VersionField is the name of the version custom field (e.g. "Available in version").
	VersionField string `koanf:"version_field"`
}

// IntegrationsConfig groups external integrations.
type IntegrationsConfig struct {
	YouTrack YouTrackConfig `koanf:"youtrack"`
}

// Config is the full clpack configuration.
type Config struct {
	// DataFolder is the name of the directory managed by clpack, relative to the project root.
	DataFolder string `koanf:"data_folder" validate:"required"`

	// DefaultChannel is the id of the channel used when only one is configured.
	DefaultChannel string `koanf:"default_channel" validate:"required"`

	// ChangelogFileDefault is the changelog path for the default channel, relative to the project root.
	ChangelogFileDefault string `koanf:"changelog_file_default" validate:"required"`

	// ChangelogFileChannel is the changelog path template for non-default channels.
	// Supports {channel}, {Channel} and {CHANNEL} placeholders.
	ChangelogFileChannel string `koanf:"changelog_file_channel" validate:"required"`

	// ChangelogHeader is the fixed document header, stripped and put back in
	// front on every prepend.
	ChangelogHeader string `koanf:"changelog_header" validate:"required"`

	// ReleaseHeader is the release header template with {VERSION} and {DATE} placeholders.
	ReleaseHeader string `koanf:"release_header" validate:"required"`

	// DateFormat is a Go time layout used for the {DATE} substitution.
	DateFormat string `koanf:"date_format" validate:"required"`

	// Sections are the canonical changelog sections, in output order. Users
	// may still write ad hoc section names in entry files.
	Sections []string `koanf:"sections" validate:"min=1"`

	// Channels are the configured release channels, in prompt order.
	Channels []ChannelConfig `koanf:"channels" validate:"min=1,dive"`

	// BranchIssuePattern extracts an issue id from a branch name. Slash-encased
	// regex with exactly one capture group; empty disables extraction.
	BranchIssuePattern string `koanf:"branch_issue_pattern"`

	// BranchVersionPattern extracts a version seed from a branch name. Same
	// format rules as BranchIssuePattern.
	BranchVersionPattern string `koanf:"branch_version_pattern"`

	Integrations IntegrationsConfig `koanf:"integrations"`
}

// LoadOptions configures config loading.
type LoadOptions struct {
	// Root is the project root directory the config file is resolved against.
	Root string
	// Path overrides the config file location. A path the user asked for must
	// exist; the default file may be absent.
	Path string
	// WarningWriter receives deprecation warnings (default: os.Stderr).
	WarningWriter io.Writer
}

// Load reads the configuration for the project rooted at root.
// A missing default config file yields the built-in defaults.
func Load(root string) (*Config, error) {
	return LoadWithOptions(LoadOptions{Root: root})
}

// LoadWithOptions loads configuration with custom options.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")
	warnW := opts.WarningWriter
	if warnW == nil {
		warnW = os.Stderr
	}

	for key, value := range Defaults() {
		k.Set(key, value)
	}

	if err := loadFileConfig(k, opts, warnW); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("CLPACK_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("unmarshaling config: %v", err)}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadFileConfig loads the config file layer. An explicit path is required to
// exist and is parsed by extension; otherwise clpack.yml is preferred and
// legacy clpack.json is read with a deprecation warning.
func loadFileConfig(k *koanf.Koanf, opts LoadOptions, warnW io.Writer) error {
	if opts.Path != "" {
		path := opts.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.Root, path)
		}
		if _, err := os.Stat(path); err != nil {
			return &ConfigError{FilePath: path, Message: "config file not found"}
		}
		return loadFile(k, path)
	}

	yamlPath := filepath.Join(opts.Root, FileName)
	legacyPath := filepath.Join(opts.Root, LegacyFileName)

	if fileExists(yamlPath) {
		if legacyExists := fileExists(legacyPath); legacyExists {
			fmt.Fprintf(warnW, "Warning: legacy config found at %s (ignored, using %s)\n", legacyPath, yamlPath)
		}
		return loadFile(k, yamlPath)
	}
	if fileExists(legacyPath) {
		fmt.Fprintf(warnW, "Warning: using deprecated JSON config at %s; rename to %s in YAML format\n", legacyPath, FileName)
		return loadFile(k, legacyPath)
	}

	// No config file: defaults apply.
	return nil
}

// loadFile parses a single config file, choosing the parser by extension.
func loadFile(k *koanf.Koanf, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return &ConfigError{FilePath: path, Message: fmt.Sprintf("parsing config: %v", err)}
		}
		return nil
	}

	if err := ValidateYAMLSyntax(path); err != nil {
		return err
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return &ConfigError{FilePath: path, Message: fmt.Sprintf("parsing config: %v", err)}
	}
	return nil
}

// envTransform converts environment variable names to config keys.
// Example: CLPACK_DATA_FOLDER -> data_folder.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "CLPACK_"))
}

// fileExists returns true if the file exists and is statable.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ChannelIDs returns the configured channel ids in declaration order.
func (c *Config) ChannelIDs() []string {
	ids := make([]string, 0, len(c.Channels))
	for _, ch := range c.Channels {
		ids = append(ids, ch.ID)
	}
	return ids
}

// HasChannel reports whether id names a configured channel.
func (c *Config) HasChannel(id string) bool {
	for _, ch := range c.Channels {
		if ch.ID == id {
			return true
		}
	}
	return false
}
