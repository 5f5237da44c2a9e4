// Package store is the release ledger and rendering engine behind clpack.
// It owns the filesystem layout under the data directory (entries/ change
// notes, channels/ per-channel release ledgers), decides which entries are
// still unreleased per channel, enforces version-name uniqueness across all
// channels, renders releases into changelog fragments and runs the
// create-release transaction that ties the changelog document and the ledger
// together.
//
// All operations are synchronous and single-threaded; the tool is a
// short-lived CLI process. There is no lock file, so concurrent invocations
// against the same project race on directory creation and on ledger
// read-modify-write. That hazard is documented, not mitigated.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/raveheart1/clpack/internal/project"
)

// Subdirectory names under the data directory.
const (
	entriesDirName  = "entries"
	channelsDirName = "channels"
)

// Store coordinates the entry repository, one ledger per configured channel,
// the renderer and the changelog document. It is the only type callers invoke
// directly.
type Store struct {
	ctx      *project.Context
	dataDir  string
	entries  *EntryRepository
	renderer *Renderer
	document *ChangelogDocument
	ledgers  map[string]*ChannelLedger
	// warnW receives non-fatal notices (stray files, directory creation).
	warnW io.Writer
}

// Open resolves the data directory under the project root and loads every
// configured channel's ledger. With initIfMissing false a missing data
// directory is a NotInitializedError; with true it is created. A corrupt
// ledger for any channel fails the whole open: there is no per-channel
// partial-availability mode.
func Open(ctx *project.Context, initIfMissing bool, warnW io.Writer) (*Store, error) {
	if warnW == nil {
		warnW = io.Discard
	}

	dataDir := filepath.Join(ctx.Root, ctx.Config.DataFolder)
	info, err := os.Stat(dataDir)
	switch {
	case err == nil && !info.IsDir():
		return nil, &ClobberedPathError{Path: dataDir}
	case os.IsNotExist(err):
		if !initIfMissing {
			return nil, &NotInitializedError{Path: dataDir, BinaryName: ctx.BinaryName}
		}
		fmt.Fprintf(warnW, "Creating changelog dir: %s\n", dataDir)
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, &NotWritableError{Path: dataDir, Err: err}
		}
	case err != nil:
		return nil, fmt.Errorf("checking changelog dir %s: %w", dataDir, err)
	}

	s := &Store{
		ctx:      ctx,
		dataDir:  dataDir,
		renderer: NewRenderer(ctx.Config.Sections, ctx.Config.ReleaseHeader, ctx.Config.DateFormat),
		document: NewChangelogDocument(ctx.Root, ctx.Config),
		ledgers:  make(map[string]*ChannelLedger, len(ctx.Config.Channels)),
		warnW:    warnW,
	}

	if err := s.ensureSubdir(entriesDirName); err != nil {
		return nil, err
	}
	if err := s.ensureSubdir(channelsDirName); err != nil {
		return nil, err
	}
	s.entries = newEntryRepository(filepath.Join(dataDir, entriesDirName))

	for _, ch := range ctx.Config.Channels {
		ledgerPath := filepath.Join(dataDir, channelsDirName, ch.ID+".json")
		ledger, err := LoadLedger(ledgerPath, ch.ID)
		if err != nil {
			return nil, err
		}
		s.ledgers[ch.ID] = ledger
	}

	return s, nil
}

// ensureSubdir creates a data subdirectory if needed and proves it is
// writable by dropping the .gitkeep sentinel. There is no lock, so a
// concurrent deletion between this check and later use is possible.
func (s *Store) ensureSubdir(name string) error {
	dir := filepath.Join(s.dataDir, name)

	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return &ClobberedPathError{Path: dir}
	case os.IsNotExist(err):
		fmt.Fprintf(s.warnW, "Creating changelog subdir: %s\n", dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &NotWritableError{Path: dir, Err: err}
		}
	case err != nil:
		return fmt.Errorf("checking changelog subdir %s: %w", dir, err)
	}

	if err := os.WriteFile(filepath.Join(dir, gitkeepName), nil, 0o644); err != nil {
		return &NotWritableError{Path: dir, Err: err}
	}
	return nil
}

// EntryExists reports whether an unreleased entry file with that name exists.
func (s *Store) EntryExists(name string) bool {
	return s.entries.Exists(name)
}

// CreateEntry writes a new entry file.
func (s *Store) CreateEntry(name, content string) error {
	return s.entries.Create(name, content)
}

// Entries exposes the entry repository for read access (listings, previews).
func (s *Store) Entries() *EntryRepository {
	return s.entries
}

// VersionExists reports whether any channel's ledger records the version.
// Version names are globally unique so a version string can never be reused
// across channels by mistake.
func (s *Store) VersionExists(version string) bool {
	for _, ledger := range s.ledgers {
		if ledger.VersionExists(version) {
			return true
		}
	}
	return false
}

// Releases returns the persisted releases for a channel in append order.
func (s *Store) Releases(channel string) ([]Release, error) {
	ledger, ok := s.ledgers[channel]
	if !ok {
		return nil, &UnknownChannelError{Channel: channel}
	}
	return ledger.Releases(), nil
}

// FindUnreleasedChanges returns the entry names present in the repository but
// absent from every release in the channel's ledger, in ascending name order.
// Stray files in the entries directory are reported to the warning writer.
func (s *Store) FindUnreleasedChanges(channel string) ([]string, error) {
	ledger, ok := s.ledgers[channel]
	if !ok {
		return nil, &UnknownChannelError{Channel: channel}
	}

	names, skipped, err := s.entries.Names()
	if err != nil {
		return nil, err
	}
	for _, file := range skipped {
		fmt.Fprintf(s.warnW, "Warning: ignoring unexpected file in entries dir: %s\n", file)
	}

	return ledger.FindUnreleased(names), nil
}

// RenderRelease renders a release to its changelog fragment without mutating
// any state. Safe to call repeatedly for previews, including for historical
// releases as long as their entry files are unchanged.
func (s *Store) RenderRelease(release Release) (string, error) {
	return s.renderer.Render(release, s.entries)
}

// stagedRelease holds everything CreateRelease computed before touching
// persisted state, so commit only performs the two writes. The split keeps
// room for a write-ahead marker or a lock file without changing callers.
type stagedRelease struct {
	channel  string
	release  Release
	ledger   *ChannelLedger
	docPath  string
	fragment string
}

// CreateRelease runs the core write transaction: render the fragment (failing
// fast on missing entry files), prepend it to the channel's changelog
// document, then append to the channel's ledger and flush. The ledger write
// comes last; if it fails after the document was already updated the error is
// a ReleaseCommitError telling the operator that manual reconciliation is
// required. There is no rollback, because both files live on the same
// filesystem with no transaction primitive available.
func (s *Store) CreateRelease(channel string, release Release) error {
	staged, err := s.stage(channel, release)
	if err != nil {
		return err
	}
	return s.commit(staged)
}

// stage validates the release and renders its fragment without writing.
func (s *Store) stage(channel string, release Release) (*stagedRelease, error) {
	ledger, ok := s.ledgers[channel]
	if !ok {
		return nil, &UnknownChannelError{Channel: channel}
	}
	if release.Version == "" {
		return nil, fmt.Errorf("release version must not be empty")
	}
	for id, l := range s.ledgers {
		if l.VersionExists(release.Version) {
			return nil, &DuplicateVersionError{Version: release.Version, Channel: id}
		}
	}

	fragment, err := s.renderer.Render(release, s.entries)
	if err != nil {
		return nil, err
	}

	return &stagedRelease{
		channel:  channel,
		release:  release,
		ledger:   ledger,
		docPath:  s.document.PathFor(channel),
		fragment: fragment,
	}, nil
}

// commit performs the two persistence writes in document-then-ledger order.
func (s *Store) commit(staged *stagedRelease) error {
	if err := s.document.Prepend(staged.docPath, s.ctx.Config.ChangelogHeader, staged.fragment); err != nil {
		return err
	}

	if err := staged.ledger.Append(staged.release); err != nil {
		return s.commitFailure(staged, err)
	}
	if err := staged.ledger.Flush(); err != nil {
		return s.commitFailure(staged, err)
	}
	return nil
}

func (s *Store) commitFailure(staged *stagedRelease, err error) error {
	return &ReleaseCommitError{
		Channel:      staged.channel,
		Version:      staged.release.Version,
		DocumentPath: staged.docPath,
		LedgerPath:   staged.ledger.Path(),
		Err:          err,
	}
}
