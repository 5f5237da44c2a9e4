package store

import "fmt"

// NotInitializedError means the data directory does not exist and the caller
// did not ask for it to be created.
type NotInitializedError struct {
	Path       string
	BinaryName string
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("changelog directory does not exist: %s. Use `%s init` to create it", e.Path, e.BinaryName)
}

// NotWritableError means a directory the store needs exists but cannot be
// written to.
type NotWritableError struct {
	Path string
	Err  error
}

func (e *NotWritableError) Error() string {
	return fmt.Sprintf("changelog directory is not writable: %s: %v", e.Path, e.Err)
}

func (e *NotWritableError) Unwrap() error { return e.Err }

// ClobberedPathError means a path the store expects to be a directory exists
// as something else.
type ClobberedPathError struct {
	Path string
}

func (e *ClobberedPathError) Error() string {
	return fmt.Sprintf("changelog path is clobbered, must be a directory or absent: %s", e.Path)
}

// CorruptLedgerError means a channel ledger file exists but cannot be parsed.
// Recovery requires human intervention; the store never rewrites a ledger it
// could not read.
type CorruptLedgerError struct {
	Channel string
	Path    string
	Err     error
}

func (e *CorruptLedgerError) Error() string {
	return fmt.Sprintf("ledger for channel %q is corrupt (%s): %v", e.Channel, e.Path, e.Err)
}

func (e *CorruptLedgerError) Unwrap() error { return e.Err }

// DuplicateVersionError means a version name is already recorded in a ledger.
// Version names are unique across all channels.
type DuplicateVersionError struct {
	Version string
	Channel string
}

func (e *DuplicateVersionError) Error() string {
	if e.Channel != "" {
		return fmt.Sprintf("version %q already released on channel %q", e.Version, e.Channel)
	}
	return fmt.Sprintf("version %q already released", e.Version)
}

// UnknownChannelError means a channel id is not present in the configuration.
type UnknownChannelError struct {
	Channel string
}

func (e *UnknownChannelError) Error() string {
	return fmt.Sprintf("no such channel: %s", e.Channel)
}

// MissingEntryFileError means a release references an entry whose backing file
// is absent or unreadable. Packing never silently drops content.
type MissingEntryFileError struct {
	Name string
	Path string
	Err  error
}

func (e *MissingEntryFileError) Error() string {
	return fmt.Sprintf("entry file for %q is missing or unreadable (%s): %v", e.Name, e.Path, e.Err)
}

func (e *MissingEntryFileError) Unwrap() error { return e.Err }

// ReleaseCommitError means the changelog document was already updated but the
// ledger append or flush failed afterwards. The release is now visible in the
// changelog file while the ledger still lists its entries as unreleased, so a
// later pack would offer them again. There is no automatic rollback; the
// operator must reconcile the two files by hand.
type ReleaseCommitError struct {
	Channel      string
	Version      string
	DocumentPath string
	LedgerPath   string
	Err          error
}

func (e *ReleaseCommitError) Error() string {
	return fmt.Sprintf(
		"MANUAL RECONCILIATION REQUIRED: release %q was written to %s but recording it in the ledger %s failed: %v. "+
			"The ledger still considers its entries unreleased; fix the ledger or revert the changelog file before packing again",
		e.Version, e.DocumentPath, e.LedgerPath, e.Err)
}

func (e *ReleaseCommitError) Unwrap() error { return e.Err }
