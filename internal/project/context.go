// Package project carries the immutable per-invocation context: the project
// root, the loaded configuration and the binary name used in messages. It is
// constructed once in the CLI layer and passed explicitly into every component
// constructor so nothing reaches for ambient globals.
package project

import (
	"github.com/raveheart1/clpack/internal/config"
)

// Context is the process-wide invocation context. Treat it as read-only.
type Context struct {
	// BinaryName is the name the tool was invoked as, used in messages.
	BinaryName string
	// Root is the project root directory (normally the working directory).
	Root string
	// Config is the fully loaded and validated configuration.
	Config *config.Config
}

// New builds a Context. binaryName falls back to "clpack" when empty.
func New(binaryName, root string, cfg *config.Config) *Context {
	if binaryName == "" {
		binaryName = "clpack"
	}
	return &Context{
		BinaryName: binaryName,
		Root:       root,
		Config:     cfg,
	}
}
