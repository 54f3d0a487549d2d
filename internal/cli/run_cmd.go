package cli

import (
	"fmt"
	"os"

	"github.com/haytac/cogbot/internal/app"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve commands",
		Long: `Starts the bot: loads every cog, connects to the Discord gateway and serves
commands until interrupted. A restart requested from chat exits with code 26
so a supervisor can start the bot again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if AppCfg == nil {
				return fmt.Errorf("configuration not loaded")
			}

			application, err := app.NewApplication(AppCfg)
			if err != nil {
				log.Error().Err(err).Msg("Failed to initialize application")
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			code, err := application.Run(cmd.Context())
			if err != nil {
				return err
			}
			if code != 0 {
				log.Info().Int("exit_code", code).Msg("Exiting")
				os.Exit(code)
			}
			return nil
		},
	}
	return cmd
}
