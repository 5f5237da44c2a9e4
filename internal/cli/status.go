package cli

import (
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/raveheart1/clpack/internal/git"
	"github.com/raveheart1/clpack/internal/output"
	"github.com/raveheart1/clpack/internal/project"
	"github.com/raveheart1/clpack/internal/store"
)

// watchDebounce coalesces bursts of filesystem events (editors write several
// times per save) into one refresh.
const watchDebounce = 250 * time.Millisecond

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List changes waiting for release",
	Long: `Show the change entries that have not been released yet on a channel.
Nothing is written. With --watch the listing refreshes whenever the
changelog directory changes, until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringP("channel", "c", "", "Release channel (default: derived from branch)")
	statusCmd.Flags().BoolP("watch", "w", false, "Refresh the listing on changelog directory changes")
}

func runStatus(cmd *cobra.Command) error {
	ctx, err := loadProject(cmd)
	if err != nil {
		return err
	}
	s, err := store.Open(ctx, false, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	channel, err := statusChannel(cmd, ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := printStatus(out, s, channel); err != nil {
		return err
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return nil
	}
	return watchStatus(cmd, ctx, channel)
}

// statusChannel resolves the channel non-interactively: flag, then branch,
// then the default channel.
func statusChannel(cmd *cobra.Command, ctx *project.Context) (string, error) {
	if flagChannel, _ := cmd.Flags().GetString("channel"); flagChannel != "" {
		return flagChannel, nil
	}

	resolver, err := git.NewResolver(ctx.Config)
	if err != nil {
		return "", err
	}
	branch, err := git.CurrentBranch(ctx.Root)
	if err != nil {
		return "", err
	}
	if detected, ok := resolver.Channel(branch); ok {
		return detected, nil
	}
	return ctx.Config.DefaultChannel, nil
}

func printStatus(out io.Writer, s *store.Store, channel string) error {
	unreleased, err := s.FindUnreleasedChanges(channel)
	if err != nil {
		return err
	}

	output.PrintChannel(out, channel)
	if len(unreleased) == 0 {
		fmt.Fprintln(out, "No unreleased changes.")
		return nil
	}

	fmt.Fprintln(out, "Changes waiting for release:")
	for _, entry := range unreleased {
		output.PrintEntryName(out, entry)
	}

	// Stateless preview of what pack would produce, under a placeholder
	// version.
	rendered, err := s.RenderRelease(store.Release{Version: "unreleased", Entries: unreleased})
	if err != nil {
		return err
	}
	output.PrintPreview(out, "Preview", rendered)
	return nil
}

// watchStatus re-prints the listing whenever the changelog data directory
// changes. The store is reopened per refresh so ledger edits are picked up
// too. Runs until the context is cancelled by an interrupt.
func watchStatus(cmd *cobra.Command, ctx *project.Context, channel string) error {
	out := cmd.OutOrStdout()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	dataDir := filepath.Join(ctx.Root, ctx.Config.DataFolder)
	for _, dir := range []string{dataDir, filepath.Join(dataDir, "entries"), filepath.Join(dataDir, "channels")} {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(out, "\nWatching for changes, Ctrl-C to stop.")

	var debounce *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-sigCtx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
				fire = debounce.C
			} else {
				debounce.Reset(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			output.PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("watch error: %v", err))
		case <-fire:
			debounce = nil
			fire = nil

			fmt.Fprintln(out)
			s, err := store.Open(ctx, false, io.Discard)
			if err != nil {
				output.PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("refresh failed: %v", err))
				continue
			}
			if err := printStatus(out, s, channel); err != nil {
				output.PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("refresh failed: %v", err))
			}
		}
	}
}
