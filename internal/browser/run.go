package browser

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the browser in the alternate screen and blocks until it quits.
func Run(ctx context.Context, lib Library, opts Options) error {
	p := tea.NewProgram(New(ctx, lib, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}
