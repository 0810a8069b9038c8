package main

import (
	"context"
	"os"

	"github.com/tunedex/tunedex/internal/providers"
	"github.com/tunedex/tunedex/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var spotify, discogs providers.Provider
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		spotify = providers.NewSpotifyClient(config.Credentials.Spotify, nil, config.HTTP.Timeout(), logger)
	}
	if config.Credentials.Discogs.APIKey != "" && config.Credentials.Discogs.APISecret != "" {
		discogs = providers.NewDiscogsClient(config.Credentials.Discogs, nil, config.HTTP.Timeout(), logger)
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: spotify,
		Discogs: discogs,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "tunedex",
		Usage:    "Search Spotify & Discogs and catalog music metadata",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
