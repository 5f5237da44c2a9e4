package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raveheart1/clpack/internal/config"
	"github.com/raveheart1/clpack/internal/output"
	"github.com/raveheart1/clpack/internal/project"
	"github.com/raveheart1/clpack/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up the changelog config and directory layout",
	Long: `Create the clpack config file with commented defaults and the changelog
data directory with its entries/ and channels/ subdirectories. Safe to run
again: an existing config is loaded instead of overwritten, and existing
directories are kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	configPath, _ := cmd.Flags().GetString("config")
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("cannot determine working directory: %w", err)
	}
	if configPath == "" {
		configPath = filepath.Join(root, config.FileName)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Fprintf(out, "Creating clpack config file: %s\n", configPath)
		if err := config.WriteDefault(configPath); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "Loading existing config file: %s\n", configPath)
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		Root:          root,
		Path:          configPath,
		WarningWriter: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	ctx := project.New(binaryName, root, cfg)
	if _, err := store.Open(ctx, true, cmd.ErrOrStderr()); err != nil {
		return err
	}

	output.PrintSuccess(out, "Changelog initialized.")
	return nil
}
