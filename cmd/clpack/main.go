package main

import (
	"os"

	"github.com/raveheart1/clpack/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
