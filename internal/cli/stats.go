package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/arenoe-studio/gmailsense/internal/provider"
	"github.com/arenoe-studio/gmailsense/internal/provider/gmail"
	"github.com/arenoe-studio/gmailsense/internal/store"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-label conversation counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := resolveGmailCredentials(cfg); err != nil {
				return err
			}

			mailbox := gmail.New(accountID, store.NewKeyringTokenStore())

			rows := []struct {
				role string
				name string
			}{
				{"Processed", cfg.Labels.Processed},
				{"Newsletter", cfg.Labels.Newsletter},
				{"Marketplace", cfg.Labels.Marketplace},
				{"Priority", cfg.Labels.Priority},
				{"General", cfg.Labels.General},
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ROLE\tLABEL\tTHREADS")
			for _, row := range rows {
				count, err := mailbox.CountThreads(cmd.Context(), row.name)
				if errors.Is(err, provider.ErrLabelNotFound) {
					fmt.Fprintf(w, "%s\t%s\t%s\n", row.role, row.name, "not created yet")
					continue
				}
				if err != nil {
					return fmt.Errorf("failed to count threads for %q: %w", row.name, err)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\n", row.role, row.name, count)
			}
			return w.Flush()
		},
	}
}
