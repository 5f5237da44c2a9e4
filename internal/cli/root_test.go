package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raveheart1/clpack/internal/errors"
)

func TestRootCmd_Structure(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "clpack", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotEmpty(t, rootCmd.Example)
	assert.True(t, rootCmd.SilenceUsage)
	assert.True(t, rootCmd.SilenceErrors)

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestCommandRegistration(t *testing.T) {
	t.Parallel()

	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range []string{"init", "add", "pack", "status", "version"} {
		assert.True(t, registered[name], "command %s should be registered", name)
	}
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		category errors.ErrorCategory
		want     int
	}{
		"argument":      {category: errors.Argument, want: ExitArgument},
		"configuration": {category: errors.Configuration, want: ExitConfiguration},
		"prerequisite":  {category: errors.Prerequisite, want: ExitPrerequisite},
		"runtime":       {category: errors.Runtime, want: ExitRuntime},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, exitCodeFor(tt.category))
		})
	}
}

// runCLI executes the root command in dir with scripted stdin. Commands and
// prompts share the same buffers, so assertions see the whole conversation.
func runCLI(t *testing.T, dir, stdin string, args ...string) (string, string, error) {
	t.Helper()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldWD) })
	if args == nil {
		args = []string{}
	}

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func initializedProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	stdout, _, err := runCLI(t, dir, "", "init")
	require.NoError(t, err)
	require.Contains(t, stdout, "Changelog initialized.")
	return dir
}

func TestInitCmd(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := runCLI(t, dir, "", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Creating clpack config file")
	assert.Contains(t, stdout, "Changelog initialized.")

	assert.FileExists(t, filepath.Join(dir, "clpack.yml"))
	assert.FileExists(t, filepath.Join(dir, "changelog", "entries", ".gitkeep"))
	assert.FileExists(t, filepath.Join(dir, "changelog", "channels", ".gitkeep"))
	assert.FileExists(t, filepath.Join(dir, "changelog", "channels", "default.json"))

	// Second run keeps the existing config.
	stdout, _, err = runCLI(t, dir, "", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Loading existing config file")
}

func TestAddCmd_NotInitialized(t *testing.T) {
	dir := t.TempDir()

	_, _, err := runCLI(t, dir, "", "add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "changelog directory does not exist")
}

func TestAddCmd_RecordsEntry(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	dir := initializedProject(t)

	// Entry name, first section, accept the prefill in the inline editor.
	stdin := "my-change\n1\n.\n"
	stdout, stderr, err := runCLI(t, dir, stdin, "add")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Issue not recognized from branch name!")
	assert.Contains(t, stdout, "Done.")

	data, err := os.ReadFile(filepath.Join(dir, "changelog", "entries", "my-change.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Fixes\n- \n", string(data))
}

func TestAddCmd_BareRootInvocation(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	dir := initializedProject(t)

	stdin := "root-default\n2\n.\n"
	stdout, _, err := runCLI(t, dir, stdin)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Done.")

	data, err := os.ReadFile(filepath.Join(dir, "changelog", "entries", "root-default.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Improvements\n- \n", string(data))
}

func TestAddCmd_RejectsDuplicateName(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	dir := initializedProject(t)

	_, _, err := runCLI(t, dir, "taken\n1\n.\n", "add")
	require.NoError(t, err)

	// First answer collides, the retry goes through.
	stdout, _, err := runCLI(t, dir, "taken\nfresh\n1\n.\n", "add")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Entry already exists")
	assert.FileExists(t, filepath.Join(dir, "changelog", "entries", "fresh.md"))
}

func TestAddCmd_RejectsUnsafeName(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	dir := initializedProject(t)

	// The slashed name would leave the entries directory, the retry goes
	// through.
	stdout, _, err := runCLI(t, dir, "feat/widget\nwidget\n1\n.\n", "add")
	require.NoError(t, err)
	assert.Contains(t, stdout, "usable as a filename")
	assert.FileExists(t, filepath.Join(dir, "changelog", "entries", "widget.md"))
	assert.NoDirExists(t, filepath.Join(dir, "changelog", "entries", "feat"))
}

func TestPackCmd_NoUnreleasedChanges(t *testing.T) {
	dir := initializedProject(t)

	_, stderr, err := runCLI(t, dir, "", "pack")
	require.NoError(t, err)
	assert.Contains(t, stderr, "No unreleased changes.")
}

func TestPackCmd_UnknownChannelFlag(t *testing.T) {
	dir := initializedProject(t)

	_, _, err := runCLI(t, dir, "", "pack", "--channel", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such channel: nope")
}

func TestPackCmd_WritesRelease(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	dir := initializedProject(t)

	_, _, err := runCLI(t, dir, "my-change\n1\n.\n", "add")
	require.NoError(t, err)

	// Version, then confirm with the default yes.
	stdout, _, err := runCLI(t, dir, "1.0\n\n", "pack", "--channel", "default")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Changes waiting for release:")
	assert.Contains(t, stdout, "my-change")
	assert.Contains(t, stdout, "Changelog written.")

	doc, err := os.ReadFile(filepath.Join(dir, "CHANGELOG.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(doc), "# Changelog\n\n## [1.0] - "))
	assert.Contains(t, string(doc), "### Fixes")

	ledger, err := os.ReadFile(filepath.Join(dir, "changelog", "channels", "default.json"))
	require.NoError(t, err)
	assert.Contains(t, string(ledger), `"1.0"`)
	assert.Contains(t, string(ledger), `"my-change"`)

	// The packed entry no longer counts as pending.
	_, stderr, err := runCLI(t, dir, "", "pack", "--channel", "default")
	require.NoError(t, err)
	assert.Contains(t, stderr, "No unreleased changes.")
}

func TestPackCmd_DeclinedConfirmWritesNothing(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	dir := initializedProject(t)

	_, _, err := runCLI(t, dir, "my-change\n1\n.\n", "add")
	require.NoError(t, err)

	_, stderr, err := runCLI(t, dir, "1.0\nn\n", "pack", "--channel", "default")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Cancelled.")
	assert.NoFileExists(t, filepath.Join(dir, "CHANGELOG.md"))
}

func TestPackCmd_RejectsUsedVersion(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	dir := initializedProject(t)

	_, _, err := runCLI(t, dir, "first\n1\n.\n", "add")
	require.NoError(t, err)
	_, _, err = runCLI(t, dir, "1.0\n\n", "pack", "--channel", "default")
	require.NoError(t, err)

	_, _, err = runCLI(t, dir, "second\n1\n.\n", "add")
	require.NoError(t, err)

	// First version answer is taken, the retry succeeds.
	stdout, _, err := runCLI(t, dir, "1.0\n1.1\n\n", "pack", "--channel", "default")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Version already exists")
	assert.Contains(t, stdout, "Changelog written.")
}

func TestStatusCmd(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	dir := initializedProject(t)

	stdout, _, err := runCLI(t, dir, "", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Channel:")
	assert.Contains(t, stdout, "No unreleased changes.")

	_, _, err = runCLI(t, dir, "pending\n1\n.\n", "add")
	require.NoError(t, err)

	stdout, _, err = runCLI(t, dir, "", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "pending")
	assert.Contains(t, stdout, "[unreleased]")

	// The changelog files stay untouched.
	assert.NoFileExists(t, filepath.Join(dir, "CHANGELOG.md"))
}

func TestVersionCmd(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := runCLI(t, dir, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "clpack")
	assert.Contains(t, stdout, "commit:")
}
