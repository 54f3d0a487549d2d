package cli

import (
	"fmt"

	"github.com/haytac/cogbot/internal/proxy"
	"github.com/spf13/cobra"
)

// NewProxyCmd creates the 'proxy' command and its subcommands.
func NewProxyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Inspect the outbound proxy configuration",
	}
	cmd.AddCommand(newProxyShowCmd())
	cmd.AddCommand(newProxyValidateCmd())
	return cmd
}

func newProxyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the configured proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if AppCfg == nil {
				return fmt.Errorf("configuration not loaded")
			}
			out := cmd.OutOrStdout()
			p := AppCfg.Proxy
			if !p.Enabled() {
				fmt.Fprintln(out, "No proxy configured; connecting directly.")
				return nil
			}
			auth := "no"
			if p.Username != "" {
				auth = "yes"
			}
			fmt.Fprintf(out, "Type: %s, Address: %s, Auth: %s\n", p.Type, p.Address, auth)
			return nil
		},
	}
}

func newProxyValidateCmd() *cobra.Command {
	var targetURL string

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that the configured proxy can reach a target URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if AppCfg == nil {
				return fmt.Errorf("configuration not loaded")
			}
			out := cmd.OutOrStdout()
			clientFactory := proxy.NewHTTPClientFactory(AppCfg.Proxy)
			validator := proxy.NewDefaultProxyValidator(clientFactory)

			via := "direct connection"
			if AppCfg.Proxy.Enabled() {
				via = fmt.Sprintf("%s proxy %s", AppCfg.Proxy.Type, AppCfg.Proxy.Address)
			}
			fmt.Fprintf(out, "Validating %s against target %s...\n", via, targetURL)
			if err := validator.Validate(cmd.Context(), targetURL); err != nil {
				fmt.Fprintf(out, "Validation failed: %v\n", err)
				return err
			}
			fmt.Fprintln(out, "Proxy validation successful.")
			return nil
		},
	}
	validateCmd.Flags().StringVar(&targetURL, "target-url", proxy.DefaultValidationTarget, "URL to test proxy connectivity against")
	return validateCmd
}
