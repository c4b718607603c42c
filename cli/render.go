package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/nox-hq/chatcall/completion"
)

const errorLabel = "Error creating completion:"

var colorError = lipgloss.Color("#FF0000")

// renderer writes an Outcome: the message to stdout, or a labelled error
// line to stderr.
type renderer struct {
	stdout io.Writer
	stderr io.Writer
	pretty bool
	label  string
}

func newRenderer(stdout, stderr io.Writer) *renderer {
	r := &renderer{
		stdout: stdout,
		stderr: stderr,
		pretty: isTerminal(stdout),
		label:  errorLabel,
	}
	if isTerminal(stderr) {
		r.label = lipgloss.NewRenderer(stderr).NewStyle().
			Bold(true).
			Foreground(colorError).
			Render(errorLabel)
	}
	return r
}

func (r *renderer) Render(out completion.Outcome) {
	switch o := out.(type) {
	case completion.Success:
		var (
			data []byte
			err  error
		)
		if r.pretty {
			data, err = json.MarshalIndent(o.Message, "", "  ")
		} else {
			data, err = json.Marshal(o.Message)
		}
		if err != nil {
			fmt.Fprintf(r.stderr, "%s %v\n", r.label, err)
			return
		}
		fmt.Fprintln(r.stdout, string(data))
	case completion.Failure:
		fmt.Fprintf(r.stderr, "%s %s\n", r.label, o.Detail)
	}
}

// isTerminal returns true if w is a file connected to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
