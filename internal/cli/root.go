package cli

import (
	"fmt"
	"os"

	"github.com/haytac/cogbot/internal/config"
	"github.com/haytac/cogbot/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	dryRun  bool
	// AppCfg is populated by RootCmd's PersistentPreRunE.
	AppCfg *config.AppConfig
)

var RootCmd = &cobra.Command{
	Use:   "cogbot",
	Short: "A Discord bot built from cogs: emoji reactions, reaction logs, osu! stats and more.",
	Long: `cogbot is a prefix-command Discord bot. Its cogs spell words in reactions,
log reaction activity, look up osu! players, upload images to imgbb and manage
the bot itself from chat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loadedCfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		AppCfg = loadedCfg

		logging.Setup(AppCfg.Log)
		AppCfg.DryRun = dryRun

		if AppCfg.DatabasePath == "" {
			return fmt.Errorf("database_path is not configured")
		}
		return nil
	},
}

// Execute runs the root command. Exit codes requested by the bot are passed
// through by the run command itself.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, $HOME/.cogbot/config.yaml)")
	RootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "log planned reactions instead of adding them")

	RootCmd.AddCommand(NewRunCmd())
	RootCmd.AddCommand(NewDbCmd())
	RootCmd.AddCommand(NewAPIKeyCmd())
	RootCmd.AddCommand(NewProxyCmd())
	RootCmd.AddCommand(NewReactCmd())
}
