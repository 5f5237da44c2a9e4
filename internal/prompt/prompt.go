// Package prompt implements the interactive line prompts used by the clpack
// commands. All prompts read and write through injected streams so tests can
// script a whole conversation.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a Prompter reading from in and writing to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Out returns the writer prompts are printed to, for interleaving other
// output with the conversation.
func (p *Prompter) Out() io.Writer {
	return p.out
}

// Text asks for a single line of input. When initial is non-empty it is shown
// as the default and returned verbatim if the user just presses Enter.
func (p *Prompter) Text(question, initial string) (string, error) {
	if initial != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, initial)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}

	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return initial, nil
	}
	return answer, nil
}

// Confirm asks a yes/no question defaulting to no. Anything other than y/yes
// counts as no.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)

	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// ConfirmYes asks a yes/no question defaulting to yes; an empty answer
// confirms.
func (p *Prompter) ConfirmYes(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [Y/n]: ", question)

	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "" || answer == "y" || answer == "yes", nil
}

// Select presents options as a numbered list and returns the chosen index.
// When defaultIndex is in range, an empty answer picks that option.
func (p *Prompter) Select(question string, options []string, defaultIndex int) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("no options to select from")
	}
	haveDefault := defaultIndex >= 0 && defaultIndex < len(options)

	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(p.out, "%s\n", question)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %s %s\n", cyan(fmt.Sprintf("%d)", i+1)), opt)
	}

	for {
		if haveDefault {
			fmt.Fprintf(p.out, "Enter number (1-%d) [%d]: ", len(options), defaultIndex+1)
		} else {
			fmt.Fprintf(p.out, "Enter number (1-%d): ", len(options))
		}
		answer, err := p.readLine()
		if err != nil {
			return 0, err
		}
		if answer == "" && haveDefault {
			return defaultIndex, nil
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > len(options) {
			fmt.Fprintf(p.out, "Please enter a number between 1 and %d.\n", len(options))
			continue
		}
		return n - 1, nil
	}
}

// MultiSelect presents options as a numbered list and returns the chosen
// indices. Numbers are entered comma-separated; an empty answer selects
// nothing. Duplicates are collapsed, order of entry is preserved.
func (p *Prompter) MultiSelect(question string, options []string) ([]int, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("no options to select from")
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(p.out, "%s\n", question)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %s %s\n", cyan(fmt.Sprintf("%d)", i+1)), opt)
	}

	for {
		fmt.Fprintf(p.out, "Enter numbers, comma-separated (1-%d, empty for none): ", len(options))
		answer, err := p.readLine()
		if err != nil {
			return nil, err
		}
		if answer == "" {
			return nil, nil
		}

		indices, ok := parseSelection(answer, len(options))
		if !ok {
			fmt.Fprintf(p.out, "Please enter numbers between 1 and %d, separated by commas.\n", len(options))
			continue
		}
		return indices, nil
	}
}

// parseSelection parses "1, 3,2" into zero-based indices, rejecting anything
// out of range.
func parseSelection(answer string, count int) ([]int, bool) {
	seen := make(map[int]bool)
	var indices []int
	for _, part := range strings.Split(answer, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > count {
			return nil, false
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		indices = append(indices, n-1)
	}
	return indices, true
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
