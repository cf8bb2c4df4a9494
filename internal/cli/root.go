// Package cli defines the gmailsense command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/arenoe-studio/gmailsense/internal/config"
	"github.com/arenoe-studio/gmailsense/internal/provider/gmail"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

// accountID keys the Gmail token in the OS keyring. The classifier operates
// on a single mailbox, so a fixed ID suffices.
const accountID = "default"

var (
	// version is set via ldflags at build time.
	version = "dev"
	cfgFile string
	debug   bool
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "gmailsense",
		Short:   "LLM-powered Gmail batch classifier",
		Long:    "Classifies unprocessed Gmail conversations with a remote LLM and applies per-category labels, read state, and cleanup.",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level: level,
			})))
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("gmailsense %s\n", version))
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	root.AddCommand(newAuthCmd())
	root.AddCommand(newProcessCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newKeyCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the application configuration from the config file.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.toml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// resolveGmailCredentials sets Gmail OAuth credentials using the first
// available source: config file, then environment variables.
func resolveGmailCredentials(cfg *config.Config) error {
	if cfg.Gmail.ClientID != "" && cfg.Gmail.ClientSecret != "" {
		gmail.SetCredentials(cfg.Gmail.ClientID, cfg.Gmail.ClientSecret)
		return nil
	}

	clientID := os.Getenv("GMAIL_CLIENT_ID")
	clientSecret := os.Getenv("GMAIL_CLIENT_SECRET")
	if clientID != "" && clientSecret != "" {
		gmail.SetCredentials(clientID, clientSecret)
		return nil
	}

	return gmail.EnsureCredentials()
}
