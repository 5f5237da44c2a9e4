package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raveheart1/clpack/internal/config"
	"github.com/raveheart1/clpack/internal/store"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err          error
		wantCategory ErrorCategory
		wantInFix    string
	}{
		"not initialized": {
			err:          &store.NotInitializedError{Path: "/p/changelog", BinaryName: "clpack"},
			wantCategory: Prerequisite,
			wantInFix:    "clpack init",
		},
		"config error": {
			err:          &config.ConfigError{Field: "default_channel", Message: "is required"},
			wantCategory: Configuration,
			wantInFix:    config.FileName,
		},
		"unknown channel": {
			err:          &store.UnknownChannelError{Channel: "eap"},
			wantCategory: Argument,
			wantInFix:    "channels",
		},
		"duplicate version": {
			err:          &store.DuplicateVersionError{Version: "1.0", Channel: "beta"},
			wantCategory: Argument,
			wantInFix:    "unique across all channels",
		},
		"corrupt ledger": {
			err:          &store.CorruptLedgerError{Channel: "default", Path: "/p/default.json", Err: fmt.Errorf("bad json")},
			wantCategory: Runtime,
			wantInFix:    "never rewritten automatically",
		},
		"missing entry file": {
			err:          &store.MissingEntryFileError{Name: "gone", Path: "/p/gone.md", Err: fmt.Errorf("no such file")},
			wantCategory: Runtime,
			wantInFix:    "Restore the entry file",
		},
		"release commit failure": {
			err: &store.ReleaseCommitError{
				Channel: "default", Version: "1.0",
				DocumentPath: "/p/CHANGELOG.md", LedgerPath: "/p/default.json",
				Err: fmt.Errorf("disk full"),
			},
			wantCategory: Runtime,
			wantInFix:    "/p/default.json",
		},
		"plain error falls through to runtime": {
			err:          fmt.Errorf("something else"),
			wantCategory: Runtime,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := Classify(tc.err, "clpack")
			require.NotNil(t, got)
			assert.Equal(t, tc.wantCategory, got.Category)

			if tc.wantInFix != "" {
				assert.Contains(t, FormatErrorPlain(got), tc.wantInFix)
			}
		})
	}
}

func TestClassify_NilAndPassthrough(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Classify(nil, "clpack"))

	original := NewArgumentError("already structured", "do the thing")
	assert.Same(t, original, Classify(original, "clpack"))
}

func TestFormatErrorPlain(t *testing.T) {
	t.Parallel()

	err := NewPrerequisiteError("store missing", "run init", "check permissions")
	got := FormatErrorPlain(err)

	assert.Contains(t, got, "Error [Prerequisite Error]: store missing")
	assert.Contains(t, got, "To fix this:")
	assert.Contains(t, got, "  • run init")
	assert.Contains(t, got, "  • check permissions")
}
