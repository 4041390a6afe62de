package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"kinokod/internal/config"
	"kinokod/internal/domain"
	"kinokod/internal/sqlite"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "kinokodctl",
		Short:         "Operator tooling for the video catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file (default $KINOKOD_CONFIG)")

	root.AddCommand(
		newResolveCommand(),
		newDraftsCommand(),
		newPromoteCommand(),
		newCategoriesCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env holds everything a subcommand needs against the store.
type env struct {
	cfg      *config.Config
	repo     *sqlite.Repository
	resolver *domain.Resolver
	curation *domain.CurationService
}

// openEnv loads config and opens the store. The caller must call close.
func openEnv() (*env, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	repo, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	sessions := domain.NewSessionStore()
	e := &env{
		cfg:      cfg,
		repo:     repo,
		resolver: domain.NewResolver(repo, repo, cfg.Lookup.PrefixFallback, logger),
		curation: domain.NewCurationService(repo, repo, sessions, cfg.Lookup.SeedCategories, cfg.Lookup.DraftListLimit, logger),
	}
	return e, func() { repo.Close() }, nil
}
