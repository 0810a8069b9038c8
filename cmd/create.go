package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/tunedex/tunedex/internal/formatter"
	"github.com/tunedex/tunedex/internal/models"
	"github.com/tunedex/tunedex/internal/providers"
	"github.com/tunedex/tunedex/internal/search"
	"github.com/tunedex/tunedex/internal/shared"
	"github.com/urfave/cli/v3"
)

// Create fetches details for each --from provider:id source, merges them
// per the --pick field=provider choices, and materializes the merged record
// as a content node.
func (r *Runner) Create(ctx context.Context, cmd *cli.Command) error {
	kind := cmd.String("type")
	if !models.ValidKind(kind) {
		return fmt.Errorf("%w: unknown type %q", shared.ErrInvalidFlag, kind)
	}

	sources, err := parseSources(cmd.StringSlice("from"))
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("%w: at least one --from provider:id is required", shared.ErrMissingArgument)
	}

	choices, err := parsePicks(cmd.StringSlice("pick"))
	if err != nil {
		return err
	}

	selections := make(map[string]*providers.Details, len(sources))
	for provider, id := range sources {
		details := r.aggregator.Details(ctx, provider, id, kind)
		if details == nil {
			return fmt.Errorf("%w: no details from %s for id %s", shared.ErrNotFound, provider, id)
		}
		selections[provider] = details
	}

	// Show what each source offered before committing to the merge.
	if len(selections) > 1 {
		if err := r.writePlain("%s\n", formatter.FormatComparison(kind, selections)); err != nil {
			return err
		}
	}

	rec := search.Merge(kind, selections, choices)

	engine, db, err := r.openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	node := engine.CreateContent(ctx, rec, kind)
	return r.writePlain("%s", formatter.FormatNode(node))
}

// parseSources splits repeated provider:id flag values into a map, one
// source per provider.
func parseSources(values []string) (map[string]string, error) {
	sources := make(map[string]string, len(values))
	for _, value := range values {
		provider, id, ok := strings.Cut(value, ":")
		if !ok || provider == "" || id == "" {
			return nil, fmt.Errorf("%w: --from must be provider:id, got %q", shared.ErrInvalidFlag, value)
		}
		sources[provider] = id
	}
	return sources, nil
}

// parsePicks splits repeated field=provider flag values into a choices map.
func parsePicks(values []string) (map[string]string, error) {
	choices := make(map[string]string, len(values))
	for _, value := range values {
		field, provider, ok := strings.Cut(value, "=")
		if !ok || field == "" || provider == "" {
			return nil, fmt.Errorf("%w: --pick must be field=provider, got %q", shared.ErrInvalidFlag, value)
		}
		choices[field] = provider
	}
	return choices, nil
}
