package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/raveheart1/clpack/internal/errors"
	"github.com/raveheart1/clpack/internal/git"
	"github.com/raveheart1/clpack/internal/output"
	"github.com/raveheart1/clpack/internal/project"
	"github.com/raveheart1/clpack/internal/prompt"
	"github.com/raveheart1/clpack/internal/store"
	"github.com/raveheart1/clpack/internal/youtrack"
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Pack pending changes into a release",
	Long: `Collect the change entries not yet released on a channel, render them
into a release section and prepend it to the channel's changelog file. The
release is recorded in the channel's ledger so the same entries are never
packed twice, and version names are unique across all channels.

The channel and version are derived from the current git branch where
possible and confirmed interactively.`,
	Aliases: []string{"release"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPack(cmd)
	},
}

func init() {
	rootCmd.AddCommand(packCmd)
	packCmd.Flags().StringP("channel", "c", "", "Release channel (default: derived from branch)")
}

func runPack(cmd *cobra.Command) error {
	ctx, err := loadProject(cmd)
	if err != nil {
		return err
	}
	s, err := store.Open(ctx, false, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	p := prompt.New(cmd.InOrStdin(), out)

	resolver, err := git.NewResolver(ctx.Config)
	if err != nil {
		return err
	}
	branch, err := git.CurrentBranch(ctx.Root)
	if err != nil {
		return err
	}

	flagChannel, _ := cmd.Flags().GetString("channel")
	channel, err := resolveChannel(ctx, p, resolver, branch, flagChannel)
	if err != nil {
		return err
	}
	output.PrintChannel(out, channel)

	unreleased, err := s.FindUnreleasedChanges(channel)
	if err != nil {
		return err
	}
	if len(unreleased) == 0 {
		fmt.Fprintln(errOut, "No unreleased changes.")
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Changes waiting for release:")
	for _, entry := range unreleased {
		output.PrintEntryName(out, entry)
	}
	fmt.Fprintln(out)

	versionSeed, _ := resolver.Version(branch)
	version, err := askVersion(p, s, versionSeed)
	if err != nil {
		return err
	}

	release := store.Release{Version: version, Entries: unreleased}
	rendered, err := s.RenderRelease(release)
	if err != nil {
		return err
	}
	output.PrintPreview(out, "Preview", rendered)

	ok, err := p.ConfirmYes("Continue - write to changelog file?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(errOut, "Cancelled.")
		return nil
	}

	if err := s.CreateRelease(channel, release); err != nil {
		return err
	}
	output.PrintSuccess(out, "Changelog written.")

	syncer := youtrack.NewSyncer(ctx.Config, resolver.IssueFromName, out)
	if syncer.Enabled(channel) {
		if err := syncer.SyncRelease(cmd.Context(), channel, version, unreleased, time.Now()); err != nil {
			output.PrintWarning(errOut, fmt.Sprintf("YouTrack update failed: %v", err))
			output.PrintWarning(errOut, "The changelog was written; update the issues manually.")
		}
	}
	return nil
}

// resolveChannel picks the release channel: an explicit flag wins, then the
// branch patterns, then an interactive pick. A single-channel config skips
// all of it.
func resolveChannel(ctx *project.Context, p *prompt.Prompter, resolver *git.Resolver, branch, flagChannel string) (string, error) {
	if flagChannel != "" {
		if !ctx.Config.HasChannel(flagChannel) {
			return "", errors.NewArgumentError(
				fmt.Sprintf("no such channel: %s", flagChannel),
				fmt.Sprintf("Configured channels: %v", ctx.Config.ChannelIDs()),
			)
		}
		return flagChannel, nil
	}

	if len(ctx.Config.Channels) == 1 {
		return ctx.Config.DefaultChannel, nil
	}

	detected, _ := resolver.Channel(branch)

	ids := ctx.Config.ChannelIDs()
	options := make([]string, len(ids))
	defaultIdx := 0
	for i, id := range ids {
		options[i] = id
		if id == detected {
			options[i] = id + " (from branch)"
			defaultIdx = i
		}
	}
	idx, err := p.Select("Release channel?", options, defaultIdx)
	if err != nil {
		return "", err
	}
	return ids[idx], nil
}

// askVersion asks for the release version until an unused one is given.
func askVersion(p *prompt.Prompter, s *store.Store, seed string) (string, error) {
	version := seed
	for {
		var err error
		version, err = p.Text("Version", version)
		if err != nil {
			return "", err
		}
		if version == "" {
			return "", fmt.Errorf("cancelled")
		}
		if s.VersionExists(version) {
			output.PrintWarning(p.Out(), "Version already exists, try again or cancel.")
			version = ""
			continue
		}
		return version, nil
	}
}
