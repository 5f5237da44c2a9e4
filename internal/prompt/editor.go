package prompt

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/raveheart1/clpack/internal/output"
)

// editorCommand returns the user's preferred editor, VISUAL over EDITOR.
func editorCommand() string {
	if v := os.Getenv("VISUAL"); v != "" {
		return v
	}
	return os.Getenv("EDITOR")
}

// Editor lets the user edit initial content and returns the result. When an
// editor is configured and stdin is a terminal it opens the content as a
// temporary markdown file; otherwise it falls back to reading lines until a
// lone "." terminates the input.
func (p *Prompter) Editor(question, initial string) (string, error) {
	editor := editorCommand()
	if editor == "" || !output.IsInteractive() {
		return p.inlineEditor(question, initial)
	}
	return runEditor(editor, initial)
}

// runEditor writes content to a temp file, runs the editor on it attached to
// the real terminal, and reads the file back.
func runEditor(editor, content string) (string, error) {
	tmp, err := os.CreateTemp("", "clpack-*.md")
	if err != nil {
		return "", fmt.Errorf("creating temp file for editor: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("seeding editor file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing editor file: %w", err)
	}

	parts := strings.Fields(editor)
	args := append(parts[1:], path)
	cmd := exec.Command(parts[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running editor %q: %w", editor, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading edited file: %w", err)
	}
	return string(data), nil
}

// inlineEditor collects multi-line input from the prompt streams. The initial
// content is printed so the user can retype or extend it; a line containing
// only "." ends the input.
func (p *Prompter) inlineEditor(question, initial string) (string, error) {
	fmt.Fprintf(p.out, "%s (finish with a single '.' on its own line):\n", question)
	if initial != "" {
		fmt.Fprint(p.out, initial)
		if !strings.HasSuffix(initial, "\n") {
			fmt.Fprintln(p.out)
		}
	}

	var b strings.Builder
	for {
		line, err := p.in.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "." {
			break
		}
		if line != "" {
			b.WriteString(trimmed)
			b.WriteString("\n")
		}
		if err != nil {
			break
		}
	}

	content := b.String()
	if content == "" {
		return initial, nil
	}
	return content, nil
}
