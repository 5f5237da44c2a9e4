// Package output provides terminal output formatting helpers for the clpack
// CLI. It is kept dependency-light so any package can import it.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// IsInteractive reports whether stdin is attached to a terminal. Prompting
// flows degrade to plain line input when it is not.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// PrintSuccess prints a bold green message, used for final confirmations
// ("Changelog written.", "Done.").
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s\n", green(message))
}

// PrintWarning prints a yellow warning line.
func PrintWarning(out io.Writer, message string) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(out, "%s\n", yellow(message))
}

// PrintNotice prints a plain green informational line.
func PrintNotice(out io.Writer, message string) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s\n", green(message))
}

// PrintEntryName prints one pending entry in a listing, cyan with a plus
// marker.
func PrintEntryName(out io.Writer, name string) {
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(out, "+ %s\n", cyan(name))
}

// PrintChannel prints the resolved channel name, green and bold.
func PrintChannel(out io.Writer, channel string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "Channel: %s\n", green(channel))
}

// PrintPreview frames a rendered fragment between dim separator lines so it
// stands out from the surrounding prompts.
func PrintPreview(out io.Writer, title, fragment string) {
	dim := color.New(color.Faint).SprintFunc()

	width := GetTerminalWidth()
	label := " " + title + " "
	lineLen := (width - len(label)) / 2
	if lineLen < 3 {
		lineLen = 3
	}
	line := strings.Repeat("─", lineLen)

	fmt.Fprintf(out, "\n%s%s%s\n\n", dim(line), dim(label), dim(line))
	fmt.Fprint(out, fragment)
	fmt.Fprintf(out, "%s\n\n", dim(strings.Repeat("─", 2*lineLen+len(label))))
}
