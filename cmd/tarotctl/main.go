// Command tarotctl manages a tarot account and its saved readings from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/ai-tarot/internal/domain/account"
	"github.com/yanqian/ai-tarot/internal/domain/history"
	"github.com/yanqian/ai-tarot/internal/infra/config"
	"github.com/yanqian/ai-tarot/internal/infra/tarotapi"
	"github.com/yanqian/ai-tarot/internal/infra/tokenstore"
	"github.com/yanqian/ai-tarot/pkg/logger"
)

var (
	backendURL string
	tokenPath  string
	timeout    time.Duration
	verbose    bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:           "tarotctl",
	Short:         "Manage your tarot account and saved readings",
	SilenceUsage:  true,
	SilenceErrors: true,
}

type deps struct {
	client   *tarotapi.Client
	accounts account.Service
	history  history.Service
}

func newDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if backendURL != "" {
		cfg.Backend.BaseURL = backendURL
	}
	if tokenPath != "" {
		cfg.Auth.TokenPath = tokenPath
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(os.Stderr, level)

	store, err := tokenstore.NewFileStore(cfg.Auth.TokenPath)
	if err != nil {
		return nil, err
	}
	client := tarotapi.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	accounts := account.NewService(client, store, log)
	return &deps{
		client:   client,
		accounts: accounts,
		history:  history.NewService(client, accounts, log),
	}, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func main() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Tarot backend base URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&tokenPath, "token-file", "", "Where the login token is stored")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 90*time.Second, "Operation timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (or set TAROT_PASSWORD)")
	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password")
	registerCmd.Flags().StringVar(&registerConfirm, "confirm", "", "Password confirmation")
	readingsListCmd.Flags().IntVar(&listLimit, "limit", history.DefaultLimit, "Page size")
	readingsListCmd.Flags().IntVar(&listOffset, "offset", 0, "Page offset")

	readingsCmd.AddCommand(readingsListCmd)
	readingsCmd.AddCommand(readingsShowCmd)
	readingsCmd.AddCommand(readingsDeleteCmd)

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(readingsCmd)
	rootCmd.AddCommand(cardsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
