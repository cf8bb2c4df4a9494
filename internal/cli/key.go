package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/arenoe-studio/gmailsense/internal/store"
	"github.com/spf13/cobra"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the OpenRouter API key",
	}
	cmd.AddCommand(newKeySetCmd())
	cmd.AddCommand(newKeyDeleteCmd())
	return cmd
}

func newKeySetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [key]",
		Short: "Store the OpenRouter API key in the OS keyring",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				fmt.Print("OpenRouter API key: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read key: %w", err)
				}
				key = strings.TrimSpace(line)
			}
			if key == "" {
				return fmt.Errorf("key must not be empty")
			}

			if err := store.NewAPIKeyStore().Save(key); err != nil {
				return err
			}
			fmt.Println("API key saved")
			return nil
		},
	}
}

func newKeyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored OpenRouter API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.NewAPIKeyStore().Delete(); err != nil {
				return err
			}
			fmt.Println("API key deleted")
			return nil
		},
	}
}
