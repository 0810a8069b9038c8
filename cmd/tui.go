package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tunedex/tunedex/internal/models"
	"github.com/tunedex/tunedex/internal/shared"
	"github.com/tunedex/tunedex/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive search-compare-create flow.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	kind := cmd.String("type")
	if !models.ValidKind(kind) {
		return fmt.Errorf("%w: unknown type %q", shared.ErrInvalidFlag, kind)
	}
	if len(r.aggregator.Providers()) == 0 {
		return fmt.Errorf("%w: no providers configured, run setup and add credentials", shared.ErrMissingCredentials)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/tunedex-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine, db, err := r.openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	model := ui.NewModel(ctx, r.aggregator, engine, kind)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
