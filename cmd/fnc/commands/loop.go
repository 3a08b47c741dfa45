package commands

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fnctui/fnc/pkg/ui"
)

// runLoop drives a bubbletea program from the given initial view, the way
// other_examples' differ model runs its viewport-backed Model, wrapped in
// the view-stack Loop (pkg/ui/stack.go) that owns splitting and egress.
func runLoop(initial ui.View) error {
	loop := ui.NewLoop(initial)

	program := tea.NewProgram(loop, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run interface: %w", err)
	}

	if err := loop.Err(); err != nil {
		slog.Error("view stack exited with error", "error", err)

		return err
	}

	if rendered, err := sharedMetrics().Render(); err == nil {
		slog.Debug("session metrics", "metrics", rendered)
	}

	return nil
}
