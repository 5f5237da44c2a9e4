package errors

import (
	"errors"
	"fmt"

	"github.com/raveheart1/clpack/internal/config"
	"github.com/raveheart1/clpack/internal/store"
)

// Classify converts any error into a categorized CLIError with remediation
// guidance. Typed store and config errors get specific advice; everything
// else becomes a plain runtime error.
func Classify(err error, binaryName string) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return NewConfigError(
			cfgErr.Error(),
			fmt.Sprintf("Check %s at the project root", config.FileName),
			fmt.Sprintf("Run '%s init' in an empty project to see a commented example config", binaryName),
		)
	}

	var notInit *store.NotInitializedError
	if errors.As(err, &notInit) {
		return NewPrerequisiteError(
			notInit.Error(),
			fmt.Sprintf("Run '%s init' at the project root first", binaryName),
		)
	}

	var clobbered *store.ClobberedPathError
	if errors.As(err, &clobbered) {
		return NewPrerequisiteError(
			clobbered.Error(),
			"Move or delete the file occupying the path, then retry",
		)
	}

	var notWritable *store.NotWritableError
	if errors.As(err, &notWritable) {
		return NewPrerequisiteError(
			notWritable.Error(),
			"Fix the directory permissions and retry",
		)
	}

	var corrupt *store.CorruptLedgerError
	if errors.As(err, &corrupt) {
		return NewRuntimeError(
			corrupt.Error(),
			"Inspect the ledger file by hand; it is never rewritten automatically",
			"Restore it from version control if the project tracks the changelog directory",
		)
	}

	var unknown *store.UnknownChannelError
	if errors.As(err, &unknown) {
		return NewArgumentError(
			unknown.Error(),
			fmt.Sprintf("Declare the channel in %s under 'channels'", config.FileName),
		)
	}

	var dup *store.DuplicateVersionError
	if errors.As(err, &dup) {
		return NewArgumentError(
			dup.Error(),
			"Version names are unique across all channels; pick a different one",
		)
	}

	var missing *store.MissingEntryFileError
	if errors.As(err, &missing) {
		return NewRuntimeError(
			missing.Error(),
			"Restore the entry file or remove the entry from the release before packing",
		)
	}

	var commitErr *store.ReleaseCommitError
	if errors.As(err, &commitErr) {
		return NewRuntimeError(
			commitErr.Error(),
			fmt.Sprintf("Either add the release to %s by hand or remove it from %s", commitErr.LedgerPath, commitErr.DocumentPath),
		)
	}

	return &CLIError{Category: Runtime, Message: err.Error()}
}
