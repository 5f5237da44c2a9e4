package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// entryExt is the extension of entry files inside the entries directory.
const entryExt = ".md"

// gitkeepName is a sentinel file keeping otherwise empty data directories
// under version control. It is tolerated and never listed as an entry.
const gitkeepName = ".gitkeep"

// Entry is one unreleased change note: its name (the file basename without
// extension) and its raw Markdown content.
type Entry struct {
	Name    string
	Content string
}

// EntryRepository maps entry names to files in the entries directory and
// answers existence and enumeration queries. It never deletes files.
type EntryRepository struct {
	dir string
}

// newEntryRepository wires a repository over an entries directory the Store
// has already ensured exists.
func newEntryRepository(dir string) *EntryRepository {
	return &EntryRepository{dir: dir}
}

// path builds the backing file path for an entry name.
func (r *EntryRepository) path(name string) string {
	return filepath.Join(r.dir, name+entryExt)
}

// Exists reports whether an entry file for name is present.
func (r *EntryRepository) Exists(name string) bool {
	_, err := os.Stat(r.path(name))
	return err == nil
}

// Create writes an entry file. The content goes to a temp file in the same
// directory first and is moved into place with a rename, so a failed write
// never leaves a partial entry behind. Last writer wins on a name collision.
func (r *EntryRepository) Create(name, content string) error {
	if err := atomicWriteFile(r.path(name), []byte(content)); err != nil {
		return fmt.Errorf("creating entry %q: %w", name, err)
	}
	return nil
}

// Read returns the content of one entry. A missing or unreadable file is a
// MissingEntryFileError so callers can fail a pack before writing anything.
func (r *EntryRepository) Read(name string) (string, error) {
	data, err := os.ReadFile(r.path(name))
	if err != nil {
		return "", &MissingEntryFileError{Name: name, Path: r.path(name), Err: err}
	}
	return string(data), nil
}

// List enumerates all entries in ascending name order. That order is part of
// the contract: unreleased-change listings and release entry lists preserve
// it. Files without the entry extension (other than the .gitkeep sentinel)
// are returned in skipped, not treated as errors.
func (r *EntryRepository) List() (entries []Entry, skipped []string, err error) {
	dirEntries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("listing entries: %w", err)
	}

	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		fileName := de.Name()
		if fileName == gitkeepName {
			continue
		}
		if !strings.HasSuffix(fileName, entryExt) {
			skipped = append(skipped, fileName)
			continue
		}

		name := strings.TrimSuffix(fileName, entryExt)
		content, err := r.Read(name)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, Entry{Name: name, Content: content})
	}

	// os.ReadDir sorts by file name, which matches name order for a fixed
	// extension; sort anyway so the contract does not hinge on that detail.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, skipped, nil
}

// Names returns the entry names from List, same order, without contents.
func (r *EntryRepository) Names() (names []string, skipped []string, err error) {
	entries, skipped, err := r.List()
	if err != nil {
		return nil, nil, err
	}
	names = make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, skipped, nil
}
