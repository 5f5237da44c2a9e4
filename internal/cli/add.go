package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raveheart1/clpack/internal/config"
	"github.com/raveheart1/clpack/internal/git"
	"github.com/raveheart1/clpack/internal/output"
	"github.com/raveheart1/clpack/internal/prompt"
	"github.com/raveheart1/clpack/internal/store"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new change entry",
	Long: `Record one change as a markdown entry file in the changelog directory.

The entry name defaults to the current git branch, and the issue number
parsed from the branch is pre-filled into the chosen sections. The entry
stays in the directory until it is packed into a release.`,
	Aliases: []string{"log"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdd(cmd)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command) error {
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

	issue, issueOK := resolver.Issue(branch)
	if issueOK {
		output.PrintNotice(out, fmt.Sprintf("Issue # parsed from branch: %s", issue))
	} else {
		output.PrintWarning(errOut, fmt.Sprintf("Issue not recognized from branch name! (%q)", branch))
	}

	name, err := askEntryName(p, s, branch, issueOK)
	if err != nil {
		return err
	}

	sections, err := askSections(p, ctx.Config.Sections)
	if err != nil {
		return err
	}

	prefill := prefillContent(sections, issue, issueOK)
	fmt.Fprintf(out, "\nPreview of changelog entry %q (not yet saved)\n\n%s\n", name, prefill)

	text, err := p.Editor("Edit as needed, then confirm", prefill)
	if err != nil {
		return err
	}
	if text == "" {
		text = prefill
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	if err := s.CreateEntry(name, text); err != nil {
		return err
	}

	output.PrintSuccess(out, "Done.")
	return nil
}

// askEntryName asks for the entry name until an unused one is given. The
// branch name is offered as the initial value only when it carries an issue
// reference, otherwise it is rarely a useful filename.
func askEntryName(p *prompt.Prompter, s *store.Store, branch string, seedBranch bool) (string, error) {
	initial := ""
	if seedBranch {
		initial = branch
	}

	for {
		name, err := p.Text("Log entry name (used as a filename, without extension)", initial)
		if err != nil {
			return "", err
		}
		if name == "" {
			return "", fmt.Errorf("cancelled")
		}
		if !config.IsFileSafe(name) {
			output.PrintWarning(p.Out(), "Entry name must be usable as a filename, try different name.")
			initial = ""
			continue
		}
		if s.EntryExists(name) {
			output.PrintWarning(p.Out(), "Entry already exists, try different name.")
			initial = ""
			continue
		}
		return name, nil
	}
}

// askSections lets the user pick the sections to pre-generate.
func askSections(p *prompt.Prompter, available []string) ([]string, error) {
	indices, err := p.MultiSelect("Choose changelog sections to pre-generate (at least one)", available)
	if err != nil {
		return nil, err
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("cancelled")
	}

	sections := make([]string, len(indices))
	for i, idx := range indices {
		sections[i] = available[idx]
	}
	return sections, nil
}

// prefillContent builds the seed markdown: one heading per chosen section
// with an empty bullet, carrying the issue reference when known.
func prefillContent(sections []string, issue string, haveIssue bool) string {
	var b strings.Builder
	for _, section := range sections {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "# %s\n", section)
		if haveIssue {
			fmt.Fprintf(&b, "-  (#%s)\n", issue)
		} else {
			b.WriteString("- \n")
		}
	}
	return b.String()
}
