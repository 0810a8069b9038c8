package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/tunedex/tunedex/internal/formatter"
	"github.com/tunedex/tunedex/internal/models"
	"github.com/tunedex/tunedex/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search fans the query out to every configured provider and prints each
// provider's results; a failed provider shows as an empty section.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	kind := cmd.String("type")
	if !models.ValidKind(kind) {
		return fmt.Errorf("%w: unknown type %q", shared.ErrInvalidFlag, kind)
	}

	if len(r.aggregator.Providers()) == 0 {
		return fmt.Errorf("%w: no providers configured, run setup and add credentials", shared.ErrMissingCredentials)
	}

	results := r.aggregator.SearchAll(ctx, query, kind)

	if cmd.Bool("json") {
		document, err := formatter.ResultsToJSON(results)
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		return r.writeJSON(document)
	}

	return r.writePlain("%s", formatter.FormatResults(results, r.aggregator.Providers()))
}

// Details looks up one item's full record from a single provider.
func (r *Runner) Details(ctx context.Context, cmd *cli.Command) error {
	kind := cmd.String("type")
	if !models.ValidKind(kind) {
		return fmt.Errorf("%w: unknown type %q", shared.ErrInvalidFlag, kind)
	}

	details := r.aggregator.Details(ctx, cmd.String("provider"), cmd.String("id"), kind)

	if cmd.Bool("json") {
		document, err := formatter.DetailsToJSON(details)
		if err != nil {
			return fmt.Errorf("failed to marshal details: %w", err)
		}
		return r.writeJSON(document)
	}

	return r.writePlain("%s", formatter.FormatDetails(details))
}
