package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_PathFor(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	doc := NewChangelogDocument("/proj", cfg)

	tests := map[string]struct {
		channel string
		want    string
	}{
		"default channel uses the fixed file": {
			channel: "default",
			want:    filepath.Join("/proj", "CHANGELOG.md"),
		},
		"other channels substitute the template": {
			channel: "beta",
			want:    filepath.Join("/proj", "CHANGELOG-BETA.md"),
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, doc.PathFor(tc.channel))
		})
	}
}

func TestDocument_PathForCaseVariants(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.ChangelogFileChannel = "{channel}-{Channel}-{CHANNEL}.md"
	doc := NewChangelogDocument("/proj", cfg)

	assert.Equal(t, filepath.Join("/proj", "eap-Eap-EAP.md"), doc.PathFor("eap"))
}

func TestDocument_Prepend(t *testing.T) {
	t.Parallel()

	const header = "# Changelog\n\n"

	tests := map[string]struct {
		existing *string // nil: file absent
		fragment string
		want     string
	}{
		"absent file gets header plus fragment": {
			fragment: "## 1.0\n\nNew\n\n",
			want:     "# Changelog\n\n## 1.0\n\nNew\n\n",
		},
		"existing header is stripped and re-added once": {
			existing: ptr("# Changelog\n\nOld release\n"),
			fragment: "## 1.0\n\nNew\n\n",
			want:     "# Changelog\n\n## 1.0\n\nNew\n\nOld release\n",
		},
		"content without the header is kept whole as body": {
			existing: ptr("hand-written notes\n"),
			fragment: "## 1.0\n\nNew\n\n",
			want:     "# Changelog\n\n## 1.0\n\nNew\n\nhand-written notes\n",
		},
		"empty existing file": {
			existing: ptr(""),
			fragment: "## 1.0\n\nNew\n\n",
			want:     "# Changelog\n\n## 1.0\n\nNew\n\n",
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			doc := NewChangelogDocument(root, testConfig())
			path := filepath.Join(root, "CHANGELOG.md")

			if tc.existing != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tc.existing), 0o644))
			}

			require.NoError(t, doc.Prepend(path, header, tc.fragment))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(data))
		})
	}
}

func ptr(s string) *string { return &s }

func TestDocument_PrependTwiceKeepsHistory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	doc := NewChangelogDocument(root, testConfig())
	path := filepath.Join(root, "CHANGELOG.md")
	const header = "# Changelog\n\n"

	require.NoError(t, doc.Prepend(path, header, "## 1.0\n\nfirst\n\n"))
	require.NoError(t, doc.Prepend(path, header, "## 1.1\n\nsecond\n\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Changelog\n\n## 1.1\n\nsecond\n\n## 1.0\n\nfirst\n\n", string(data))
}
