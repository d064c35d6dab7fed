// Package repl is the interactive session loop: one line in, one answer out.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/petasbytes/go-chatbot/internal/runner"
)

const maxLineBytes = 1 << 20

// Turner runs one conversation turn.
type Turner interface {
	RunTurn(ctx context.Context, sessionID, input string) (*runner.Result, error)
}

// IsExit reports whether input is one of the exit commands (quit, exit, q), ignoring case and surrounding space.
func IsExit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

type Styles struct {
	Enabled   bool
	User      lipgloss.Style
	Assistant lipgloss.Style
}

// NewStyles returns the prompt styles; with color false labels are printed as-is.
func NewStyles(color bool) Styles {
	return Styles{
		Enabled:   color,
		User:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	}
}

func (s Styles) label(st lipgloss.Style, text string) string {
	if !s.Enabled {
		return text
	}
	return st.Render(text)
}

type Loop struct {
	In        io.Reader
	Out       io.Writer
	Turner    Turner
	SessionID string
	Styles    Styles
	Logger    *slog.Logger
}

// Run reads lines until an exit command, EOF or ctx cancellation (all return nil).
// A failed turn ends the loop and its error is returned.
func (l *Loop) Run(ctx context.Context) error {
	log := l.Logger
	if log == nil {
		log = slog.Default()
	}
	fmt.Fprintln(l.Out, "Chat started! Type 'quit', 'exit', or 'q' to end the conversation.")
	fmt.Fprintf(l.Out, "Chat session ID: %s\n", l.SessionID)

	done := make(chan struct{})
	defer close(done)

	// stdin reader goroutine -> lines into channel
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(l.In)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(l.Out, l.Styles.label(l.Styles.User, "User")+": ")
		var (
			input string
			ok    bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(l.Out, "\nGoodbye!")
			return nil
		case input, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(l.Out, "\nGoodbye!")
			if err := <-scanErr; err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if IsExit(input) {
			fmt.Fprintln(l.Out, "Goodbye!")
			return nil
		}

		res, err := l.Turner.RunTurn(ctx, l.SessionID, input)
		if err != nil {
			// Interrupted mid-turn: the turn is rolled back and the user is leaving.
			if ctx.Err() != nil {
				fmt.Fprintln(l.Out, "\nGoodbye!")
				return nil
			}
			log.Error("turn failed", "err", err)
			fmt.Fprintf(l.Out, "An error occurred: %v\n", err)
			return err
		}
		fmt.Fprintf(l.Out, "%s: %s\n", l.Styles.label(l.Styles.Assistant, "Assistant"), res.Answer)
	}
}
