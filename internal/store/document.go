package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raveheart1/clpack/internal/config"
)

// ChangelogDocument merges rendered release fragments into the head of a
// channel's public changelog file, keeping the configured header in front and
// the existing history below.
type ChangelogDocument struct {
	root string
	cfg  *config.Config
}

// NewChangelogDocument builds a document writer for the project rooted at root.
func NewChangelogDocument(root string, cfg *config.Config) *ChangelogDocument {
	return &ChangelogDocument{root: root, cfg: cfg}
}

// PathFor resolves the changelog file path for a channel. The default channel
// uses the fixed default file; other channels substitute the channel id into
// the per-channel template via the {channel}, {Channel} and {CHANNEL} case
// variants.
func (d *ChangelogDocument) PathFor(channel string) string {
	if channel == d.cfg.DefaultChannel {
		return filepath.Join(d.root, d.cfg.ChangelogFileDefault)
	}

	name := d.cfg.ChangelogFileChannel
	name = strings.ReplaceAll(name, "{channel}", strings.ToLower(channel))
	name = strings.ReplaceAll(name, "{Channel}", titleCase(channel))
	name = strings.ReplaceAll(name, "{CHANNEL}", strings.ToUpper(channel))
	return filepath.Join(d.root, name)
}

// Prepend writes header + fragment + the previous body to path. If the file
// already starts with the configured header, the header is stripped from the
// old content first; otherwise the entire old content is kept as the body.
// The file is replaced via temp file and rename, so a failed write leaves the
// original document intact.
func (d *ChangelogDocument) Prepend(path, header, fragment string) error {
	body := ""
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		body = strings.TrimPrefix(string(data), header)
	case os.IsNotExist(err):
		// New document: header + fragment only.
	default:
		return fmt.Errorf("reading changelog %s: %w", path, err)
	}

	if err := atomicWriteFile(path, []byte(header+fragment+body)); err != nil {
		return fmt.Errorf("writing changelog %s: %w", path, err)
	}
	return nil
}

// titleCase renders the {Channel} variant: first rune upper, rest lower.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}
