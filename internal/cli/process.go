package cli

import (
	"fmt"
	"log/slog"

	"github.com/arenoe-studio/gmailsense/internal/app"
	"github.com/arenoe-studio/gmailsense/internal/classifier"
	"github.com/arenoe-studio/gmailsense/internal/provider/gmail"
	"github.com/arenoe-studio/gmailsense/internal/store"
	"github.com/spf13/cobra"
)

func newProcessCmd() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Classify one batch of unprocessed conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if batchSize > 0 {
				cfg.Processing.BatchSize = batchSize
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := resolveGmailCredentials(cfg); err != nil {
				return err
			}

			apiKey, err := store.NewAPIKeyStore().Load()
			if err != nil {
				return err
			}

			mailbox := gmail.New(accountID, store.NewKeyringTokenStore())
			cls := classifier.New(apiKey, classifier.Options{
				APIURL:  cfg.OpenRouter.APIURL,
				Model:   cfg.OpenRouter.Model,
				Referer: cfg.OpenRouter.Referer,
				Title:   cfg.OpenRouter.Title,
			}, slog.Default())

			processor := app.NewProcessor(cfg, mailbox, cls, slog.Default())
			stats, err := processor.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}

			fmt.Printf("Processed %d conversations: %d succeeded, %d failed, %d skipped\n",
				stats.Total, stats.Success, stats.Error, stats.Skipped)
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "override the configured batch size (1-100)")
	return cmd
}
