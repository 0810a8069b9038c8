package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/tunedex/tunedex/internal/catalog"
	"github.com/tunedex/tunedex/internal/providers"
	"github.com/tunedex/tunedex/internal/repositories"
	"github.com/tunedex/tunedex/internal/search"
	"github.com/tunedex/tunedex/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	spotify    providers.Provider
	discogs    providers.Provider
	aggregator *search.Aggregator
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Spotify    providers.Provider
	Discogs    providers.Provider
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		spotify:    opts.Spotify,
		discogs:    opts.Discogs,
		aggregator: search.NewAggregator(opts.Logger, opts.Spotify, opts.Discogs),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, searchCommand, detailsCommand, createCommand, tuiCommand, migrateCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger, e.g. to redirect logs away from a TUI.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.aggregator = search.NewAggregator(logger, r.spotify, r.discogs)
}

// openCatalog opens the configured database and wires the reconciliation
// engine over it. The caller owns closing the returned database.
func (r *Runner) openCatalog() (*catalog.Engine, *sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	engine := catalog.NewEngine(
		repositories.NewNodeRepository(db),
		repositories.NewTermRepository(db),
		repositories.NewMediaRepository(db, r.config.Media.Dir),
		shared.NewHTTPFetcher(r.httpClient),
		r.discogs,
		r.logger,
	)

	return engine, db, nil
}

// writeJSON writes a rendered JSON document followed by a trailing newline.
func (r *Runner) writeJSON(document []byte) error {
	if _, err := r.output.Write(document); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
