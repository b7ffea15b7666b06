package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/threadline-app/threadline/internal/domain/entities"
	"github.com/threadline-app/threadline/internal/domain/ports"
	"github.com/threadline-app/threadline/internal/domain/services"
)

// terminalPrompter resolves duplicate conflicts on stdin/stdout.
type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminalPrompter() *terminalPrompter {
	return &terminalPrompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

var _ ports.Prompter = (*terminalPrompter)(nil)

// ConfirmDuplicate lists the conflicting records and asks whether to save
// anyway. Anything other than an explicit yes declines.
func (p *terminalPrompter) ConfirmDuplicate(_ context.Context, duplicates []entities.Relationship) (bool, error) {
	fmt.Fprintf(p.out, "A relationship like this already exists:\n")
	for _, d := range duplicates {
		relType := string(d.Type)
		if d.CustomType != "" {
			relType = d.CustomType
		}
		fmt.Fprintf(p.out, "  %s -[%s]-> %s (id: %s)\n", d.Character1ID, relType, d.Character2ID, d.ID)
	}
	fmt.Fprint(p.out, "Save anyway? [y/N]: ")

	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// terminalAlerter surfaces blocking messages on stderr.
type terminalAlerter struct{}

var _ ports.Alerter = terminalAlerter{}

func (terminalAlerter) Alert(message string) {
	fmt.Fprintf(os.Stderr, "! %s\n", message)
}

// commandWindow stands in for the editor window: closing it ends the
// command.
type commandWindow struct {
	closed bool
}

var _ ports.Window = (*commandWindow)(nil)

func (w *commandWindow) Close() {
	w.closed = true
}

// terminalRenderer projects item editor state as plain text.
type terminalRenderer struct {
	out io.Writer
}

var _ services.ItemRenderer = (*terminalRenderer)(nil)

func (r *terminalRenderer) RenderForm(form services.ItemForm) {
	fmt.Fprintf(r.out, "Item @ year %d, subtick %d: %s\n", form.Year, form.Subtick, form.Title)
}

func (r *terminalRenderer) RenderPictures(pictures []entities.Picture) {
	if len(pictures) == 0 {
		return
	}
	fmt.Fprintf(r.out, "Pictures (%d):\n", len(pictures))
	for i, pic := range pictures {
		fmt.Fprintf(r.out, "  [%d] %s (%s, %d bytes)\n", i, pic.Name, pic.MediaType, pic.Size)
	}
}
