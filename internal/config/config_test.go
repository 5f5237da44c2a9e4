package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "changelog", cfg.DataFolder)
	assert.Equal(t, "default", cfg.DefaultChannel)
	assert.Equal(t, "CHANGELOG.md", cfg.ChangelogFileDefault)
	assert.Equal(t, "CHANGELOG-{CHANNEL}.md", cfg.ChangelogFileChannel)
	assert.Equal(t, "# Changelog\n\n", cfg.ChangelogHeader)
	assert.Equal(t, "[{VERSION}] - {DATE}", cfg.ReleaseHeader)
	assert.Equal(t, "2006-01-02", cfg.DateFormat)
	assert.Equal(t, []string{"Fixes", "Improvements", "New features", "Internal"}, cfg.Sections)
	require.Len(t, cfg.Channels, 1)
	assert.Equal(t, "default", cfg.Channels[0].ID)
	assert.False(t, cfg.Integrations.YouTrack.Enabled)
}

// The commented template written by `clpack init` must parse to the same
// values as the built-in defaults.
func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(DefaultConfigTemplate), 0o644))

	fromTemplate, err := Load(root)
	require.NoError(t, err)

	fromDefaults, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, fromDefaults, fromTemplate)
}

func TestLoad_FileOverrides(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	content := `
data_folder: notes
default_channel: beta
channels:
  - id: beta
    branch: "/^beta\\/.*/"
  - id: manual
    branch: ""
sections:
  - Added
  - Fixed
`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "notes", cfg.DataFolder)
	assert.Equal(t, "beta", cfg.DefaultChannel)
	assert.Equal(t, []string{"beta", "manual"}, cfg.ChannelIDs())
	assert.Equal(t, []string{"Added", "Fixed"}, cfg.Sections)
	// Untouched values keep their defaults.
	assert.Equal(t, "CHANGELOG.md", cfg.ChangelogFileDefault)
}

func TestLoad_LegacyJSONWarns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, LegacyFileName), []byte(`{"data_folder": "history"}`), 0o644))

	var warnings bytes.Buffer
	cfg, err := LoadWithOptions(LoadOptions{Root: root, WarningWriter: &warnings})
	require.NoError(t, err)

	assert.Equal(t, "history", cfg.DataFolder)
	assert.Contains(t, warnings.String(), "deprecated JSON config")
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, err := LoadWithOptions(LoadOptions{Root: root, Path: "missing.yml", WarningWriter: &bytes.Buffer{}})

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "not found")
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("data_folder: [unclosed"), 0o644))

	_, err := Load(root)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func(t *testing.T) *Config {
		cfg, err := Load(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	tests := map[string]struct {
		mutate    func(*Config)
		wantField string
	}{
		"valid defaults": {
			mutate: func(*Config) {},
		},
		"empty data folder": {
			mutate:    func(c *Config) { c.DataFolder = "" },
			wantField: "data_folder",
		},
		"default channel not configured": {
			mutate:    func(c *Config) { c.DefaultChannel = "eap" },
			wantField: "default_channel",
		},
		"duplicate channel ids": {
			mutate: func(c *Config) {
				c.Channels = append(c.Channels, ChannelConfig{ID: "default"})
			},
			wantField: "channels",
		},
		"channel id with path separator": {
			mutate: func(c *Config) {
				c.Channels[0].ID = "a/b"
				c.DefaultChannel = "a/b"
			},
			wantField: "channels",
		},
		"issue pattern without slashes": {
			mutate:    func(c *Config) { c.BranchIssuePattern = `^\d+` },
			wantField: "branch_issue_pattern",
		},
		"issue pattern with two groups": {
			mutate:    func(c *Config) { c.BranchIssuePattern = `/(\d+)-(\d+)/` },
			wantField: "branch_issue_pattern",
		},
		"version pattern invalid regex": {
			mutate:    func(c *Config) { c.BranchVersionPattern = `/(a|/` },
			wantField: "branch_version_pattern",
		},
		"channel branch invalid regex": {
			mutate:    func(c *Config) { c.Channels[0].Branch = `/[unclosed/` },
			wantField: "channels[default].branch",
		},
		"channel branch literal is fine": {
			mutate: func(c *Config) { c.Channels[0].Branch = "main" },
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := base(t)
			tc.mutate(cfg)
			err := Validate(cfg)

			if tc.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.wantField, cfgErr.Field)
		})
	}
}

func TestWriteDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigTemplate, string(data))

	// A second write must not clobber the existing file.
	assert.Error(t, WriteDefault(path))
}

func TestAsRegexPattern(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input    string
		want     string
		wantOK   bool
	}{
		"plain literal":     {input: "foo", wantOK: false},
		"leading slash":     {input: "/foo", wantOK: false},
		"trailing slash":    {input: "foo/", wantOK: false},
		"encased":           {input: "/foo/", want: "foo", wantOK: true},
		"single slash only": {input: "/", wantOK: false},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok := AsRegexPattern(tc.input)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
