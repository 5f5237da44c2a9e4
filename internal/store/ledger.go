package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// Release is an immutable-once-persisted record of one packed version: its
// name and the entries it bundles, in repository listing order.
type Release struct {
	Version string   `json:"version"`
	Entries []string `json:"entries"`
}

// ChannelLedger is the durable per-channel record of past releases, backed by
// one JSON file holding an array of releases in append order. In-memory state
// is the source of truth between Append and Flush; a crash in that window
// loses the un-flushed release, which is why callers only report success
// after Flush returns.
//
// There is no lock file: two processes doing a read-modify-write of the same
// ledger can lose an append. Concurrent invocations against one project are a
// documented hazard, not something the ledger defends against.
type ChannelLedger struct {
	path     string
	channel  string
	releases []Release
	dirty    bool
}

// LoadLedger reads the ledger for a channel. An absent backing file is an
// empty ledger and is created immediately so the channel directory reflects
// every configured channel. Malformed content is a CorruptLedgerError; the
// ledger is never silently reset.
func LoadLedger(path, channel string) (*ChannelLedger, error) {
	l := &ChannelLedger{path: path, channel: channel}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := l.Flush(); err != nil {
			return nil, err
		}
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &l.releases); err != nil {
		return nil, &CorruptLedgerError{Channel: channel, Path: path, Err: err}
	}
	return l, nil
}

// Channel returns the channel id this ledger records.
func (l *ChannelLedger) Channel() string { return l.channel }

// Path returns the backing file path.
func (l *ChannelLedger) Path() string { return l.path }

// Releases returns the recorded releases in append order. The slice is shared;
// callers must not modify it.
func (l *ChannelLedger) Releases() []Release { return l.releases }

// VersionExists reports whether version is already recorded in this ledger.
func (l *ChannelLedger) VersionExists(version string) bool {
	for _, r := range l.releases {
		if r.Version == version {
			return true
		}
	}
	return false
}

// Append records a release in memory. Append order is significant (most
// recent last) and is never reordered. The release is durable only after
// Flush succeeds.
func (l *ChannelLedger) Append(release Release) error {
	if l.VersionExists(release.Version) {
		return &DuplicateVersionError{Version: release.Version, Channel: l.channel}
	}
	l.releases = append(l.releases, release)
	l.dirty = true
	return nil
}

// Flush serializes the full release list and replaces the backing file via a
// temp file and rename, so a failed write leaves the previous ledger intact.
func (l *ChannelLedger) Flush() error {
	releases := l.releases
	if releases == nil {
		releases = []Release{}
	}
	data, err := json.MarshalIndent(releases, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing ledger for channel %q: %w", l.channel, err)
	}
	data = append(data, '\n')

	if err := atomicWriteFile(l.path, data); err != nil {
		return fmt.Errorf("flushing ledger %s: %w", l.path, err)
	}
	l.dirty = false
	return nil
}

// FindUnreleased returns the names from allEntryNames that no release in this
// ledger contains, preserving the input order (the repository's ascending
// name order). Other channels' ledgers do not influence the result.
func (l *ChannelLedger) FindUnreleased(allEntryNames []string) []string {
	released := make(map[string]bool)
	for _, r := range l.releases {
		for _, name := range r.Entries {
			released[name] = true
		}
	}

	unreleased := make([]string, 0, len(allEntryNames))
	for _, name := range allEntryNames {
		if !released[name] {
			unreleased = append(unreleased, name)
		}
	}
	return unreleased
}
