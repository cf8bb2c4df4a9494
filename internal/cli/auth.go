package cli

import (
	"fmt"

	"github.com/arenoe-studio/gmailsense/internal/provider/gmail"
	"github.com/arenoe-studio/gmailsense/internal/store"
	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize Gmail access via OAuth",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := resolveGmailCredentials(cfg); err != nil {
				return err
			}

			mailbox := gmail.New(accountID, store.NewKeyringTokenStore())

			fmt.Println("Starting Gmail OAuth flow...")
			if err := mailbox.Authenticate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			email, err := mailbox.GetProfile(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get profile: %w", err)
			}
			fmt.Printf("Authorized as %s\n", email)
			return nil
		},
	}
}
