package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonmartinstorm/repobackupern/internal/backup"
	"github.com/jonmartinstorm/repobackupern/internal/catalog"
	"github.com/jonmartinstorm/repobackupern/internal/config"
	"github.com/jonmartinstorm/repobackupern/internal/fetcher"
	"github.com/jonmartinstorm/repobackupern/internal/gitclone"
	"github.com/jonmartinstorm/repobackupern/internal/logger"
	"github.com/jonmartinstorm/repobackupern/internal/runner"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

var flags config.Flags

var rootCmd = &cobra.Command{
	Use:   "repobackupern",
	Short: "Tar backup av repositories og gists for en GitHub-konto",
	Long: "repobackupern henter alle originale repositories (forks hoppes over) og " +
		"gists for en GitHub-konto og legger dem i en tidsstemplet katalog på disk, " +
		"med metadata, oppsummering og valgfri zip-komprimering.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&flags.Token, "token", "", "GitHub personal access token (valgfritt hvis .token-fila finnes)")
	rootCmd.Flags().StringVar(&flags.Username, "username", "", "GitHub-brukernavn (standard er eieren av tokenet)")
	rootCmd.Flags().BoolVar(&flags.NoZip, "no-zip", false, "ikke komprimer backupen til zip")
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig(flags, os.Getenv)
	if err != nil {
		return err
	}

	logger.SetupLogger(cfg.Debug)

	// Med app-auth kloner vi med installasjonstokenet, ikke PAT.
	cloneToken := cfg.Token
	if cfg.UsesAppAuth() {
		client, installToken, err := fetcher.NewAppAuthClient(ctx, cfg)
		if err != nil {
			return err
		}
		fetcher.HttpClient = client
		cloneToken = installToken
		slog.Info("Bruker GitHub App-autentisering")
	}

	cloner, err := gitclone.NewCloner(cloneToken)
	if err != nil {
		return err
	}

	cat, err := newCatalog(ctx, cfg)
	if err != nil {
		return err
	}

	app := runner.NewApp(cfg, fetcher.NewClient(cfg), cloner, cat)
	return app.RunSafe(ctx)
}

// newCatalog gir nil når ingen katalog er konfigurert.
func newCatalog(ctx context.Context, cfg config.Config) (catalog.Writer, error) {
	switch cfg.Catalog {
	case config.StoragePostgres:
		return catalog.NewPostgresWriter(ctx, cfg.PostgresDSN)
	case config.StorageBigQuery:
		return catalog.NewBigQueryWriter(ctx, cfg)
	default:
		return nil, nil
	}
}

func main() {
	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	go func() {
		<-ctx.Done()
		slog.Info("SIGTERM mottatt – rydder opp...")
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Applikasjonen feilet", "error", err)
		os.Exit(1)
	}
}

// sørger for at backup-pakkens interfaces faktisk dekkes av implementasjonene
var (
	_ backup.Cloner  = (*gitclone.Cloner)(nil)
	_ runner.Fetcher = (*fetcher.Client)(nil)
)
