// Package cli wires the clpack commands together. Each command file owns one
// subcommand and registers it on the root command in its init function.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/raveheart1/clpack/internal/config"
	"github.com/raveheart1/clpack/internal/errors"
	"github.com/raveheart1/clpack/internal/project"
)

const binaryName = "clpack"

var rootCmd = &cobra.Command{
	Use:   binaryName,
	Short: "Keep a changelog from per-change markdown entries",
	Long: `clpack maintains a changelog from small per-change markdown files.

Each change is recorded as an entry file while you work. When a release
is cut, the pending entries are packed into a release section that is
prepended to the changelog and recorded in the channel's release ledger,
so every entry is released exactly once per channel.`,
	Example: `  clpack init           # set up config and the changelog directory
  clpack                # record a change entry (same as 'clpack add')
  clpack pack -c eap    # pack pending changes into a release
  clpack status         # list changes waiting for release`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bare invocation records a change, the most frequent operation.
		return runAdd(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: "+config.FileName+" in the project root)")
}

// Execute runs the CLI and returns the process exit code. Errors are
// classified and printed with remediation hints before returning.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	cliErr := errors.Classify(err, binaryName)
	errors.FprintError(os.Stderr, cliErr)
	return exitCodeFor(cliErr.Category)
}

// loadProject loads the configuration and builds the project context for the
// current working directory. Every command starts here.
func loadProject(cmd *cobra.Command) (*project.Context, error) {
	configPath, _ := cmd.Flags().GetString("config")

	root, err := os.Getwd()
	if err != nil {
		return nil, errors.WrapWithMessage(err, errors.Runtime, "cannot determine working directory")
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		Root:          root,
		Path:          configPath,
		WarningWriter: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	return project.New(binaryName, root, cfg), nil
}
