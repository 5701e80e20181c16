package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	sqliteadapter "github.com/ericfisherdev/oncoassist/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/oncoassist/internal/config"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oncoassist",
		Short: "Breast cancer decision support backed by Azure OpenAI on your data",
		Long: `oncoassist answers breast cancer questions using an Azure OpenAI deployment
grounded on an Azure AI Search index of clinical guidelines.

Configuration is read from the environment:
  ONCOASSIST_LISTEN_ADDR  address for the web UI (default 127.0.0.1:8080)
  ONCOASSIST_DB_PATH      SQLite file holding the API key (default oncoassist.db)
  ONCOASSIST_SECRET_KEY   optional 64 hex chars; seals the stored key at rest`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(serveCmd(), askCmd(), keyCmd())
	return cmd
}

// openCredentialStore loads configuration, opens the database and runs
// migrations. The returned close function releases the database.
func openCredentialStore(ctx context.Context) (*config.Config, *sqliteadapter.CredentialRepo, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		closeDB()
		return nil, nil, nil, fmt.Errorf("migrate %s: %w", cfg.DBPath, err)
	}

	return cfg, sqliteadapter.NewCredentialRepo(db, cfg.SecretKey), closeDB, nil
}
