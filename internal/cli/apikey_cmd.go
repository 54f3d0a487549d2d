package cli

import (
	"fmt"
	"strings"

	"github.com/haytac/cogbot/internal/app"
	"github.com/spf13/cobra"
)

// NewAPIKeyCmd manages the third-party API keys used by the cogs.
func NewAPIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apikey",
		Short:   "Manage third-party API keys (imgbb, osu)",
		Aliases: []string{"apikeys"},
	}
	cmd.AddCommand(newAPIKeySetCmd())
	cmd.AddCommand(newAPIKeyListCmd())
	cmd.AddCommand(newAPIKeyRemoveCmd())
	return cmd
}

func newAPIKeySetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set <service> <name> <value>",
		Short:   "Store an API key (encrypted with encryption_key)",
		Example: "  cogbot apikey set osu api_key 0123456789abcdef",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if AppCfg == nil {
				return fmt.Errorf("configuration not loaded")
			}
			db, _, tokens, err := app.OpenStores(AppCfg)
			if err != nil {
				return err
			}
			defer db.Close()

			service, name := strings.ToLower(args[0]), strings.ToLower(args[1])
			if err := tokens.Set(cmd.Context(), service, name, args[2]); err != nil {
				return fmt.Errorf("failed to store key: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Key %s/%s stored.\n", service, name)
			return nil
		},
	}
}

func newAPIKeyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored API keys (metadata only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if AppCfg == nil {
				return fmt.Errorf("configuration not loaded")
			}
			db, _, tokens, err := app.OpenStores(AppCfg)
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := tokens.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list keys: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No API keys stored.")
				return nil
			}
			fmt.Fprintln(out, "Stored API keys:")
			for _, t := range list {
				hash := t.TokenHash
				if len(hash) > 8 {
					hash = hash[len(hash)-8:]
				}
				fmt.Fprintf(out, "%s/%s, hash: ...%s, updated: %s\n",
					t.Service, t.Name, hash, t.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newAPIKeyRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <service> <name>",
		Short:   "Delete a stored API key",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if AppCfg == nil {
				return fmt.Errorf("configuration not loaded")
			}
			db, _, tokens, err := app.OpenStores(AppCfg)
			if err != nil {
				return err
			}
			defer db.Close()

			service, name := strings.ToLower(args[0]), strings.ToLower(args[1])
			removed, err := tokens.Remove(cmd.Context(), service, name)
			if err != nil {
				return fmt.Errorf("failed to remove key: %w", err)
			}
			if !removed {
				return fmt.Errorf("no key stored for %s/%s", service, name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Key %s/%s removed.\n", service, name)
			return nil
		},
	}
}
