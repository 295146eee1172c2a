package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/immowert/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrAborted is returned when the user leaves the form without submitting.
var ErrAborted = errors.New("form aborted")

// Run shows the intake form pre-filled with initial and returns the submitted
// request.
func Run(ctx context.Context, initial model.ValuationRequest, opts ...Option) (model.ValuationRequest, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(newModel(initial, cfg), programOpts...).Run()
	if err != nil {
		return model.ValuationRequest{}, fmt.Errorf("TUI error: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return model.ValuationRequest{}, fmt.Errorf("unexpected TUI model type %T", final)
	}
	if !m.Submitted() {
		return model.ValuationRequest{}, ErrAborted
	}
	return m.Request(), nil
}
