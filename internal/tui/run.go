package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"mindcare-backend/internal/client"
)

type Options struct {
	API        *client.APIClient
	Prefs      *client.Preferences
	Recognizer client.Recognizer
	Synth      client.Synthesizer
	Mode       client.Mode
}

// Run shows the chat widget until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	view := &ProgramView{}
	ctrl := client.NewController(opts.API, opts.Prefs, view, opts.Recognizer, opts.Synth)
	defer ctrl.Close()

	m := NewModel(ctx, ctrl, opts.Prefs, opts.Mode)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	view.Attach(p)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
