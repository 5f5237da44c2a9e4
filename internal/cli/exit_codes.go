package cli

import "github.com/raveheart1/clpack/internal/errors"

// Exit codes for the clpack CLI
// These codes support scripting and CI integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitRuntime indicates a failure during command execution
	ExitRuntime = 1

	// ExitArgument indicates invalid command arguments
	ExitArgument = 2

	// ExitConfiguration indicates invalid or missing configuration
	ExitConfiguration = 3

	// ExitPrerequisite indicates the project is not set up for clpack
	ExitPrerequisite = 4
)

// exitCodeFor maps an error category to the process exit code.
func exitCodeFor(category errors.ErrorCategory) int {
	switch category {
	case errors.Argument:
		return ExitArgument
	case errors.Configuration:
		return ExitConfiguration
	case errors.Prerequisite:
		return ExitPrerequisite
	default:
		return ExitRuntime
	}
}
