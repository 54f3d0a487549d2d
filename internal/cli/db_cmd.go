package cli

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/haytac/cogbot/internal/database"
	"github.com/spf13/cobra"
)

// NewDbCmd creates the 'db' command for database operations.
func NewDbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the settings database (SQLite)",
	}
	cmd.AddCommand(newDbBackupCmd())
	cmd.AddCommand(newDbRestoreCmd())
	return cmd
}

func defaultBackupPath(dbPath string, now time.Time) string {
	return filepath.Join(filepath.Dir(dbPath),
		fmt.Sprintf("%s-backup-%s.db", filepath.Base(dbPath), now.Format("20060102-150405")))
}

func newDbBackupCmd() *cobra.Command {
	var outputPath string
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Backup the SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if AppCfg == nil {
				return fmt.Errorf("configuration not loaded for db backup")
			}
			db, err := database.Connect(AppCfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			target := outputPath
			if target == "" {
				target = defaultBackupPath(AppCfg.DatabasePath, time.Now())
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backing up database from '%s' to '%s'...\n", AppCfg.DatabasePath, target)
			if err := db.Backup(cmd.Context(), target); err != nil {
				return fmt.Errorf("database backup failed: %w", err)
			}
			fmt.Fprintln(out, "Database backup successful.")
			return nil
		},
	}
	backupCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path for the backup file (default: [db_dir]/[db_name]-backup-[timestamp].db)")
	return backupCmd
}

func newDbRestoreCmd() *cobra.Command {
	var yes bool
	restoreCmd := &cobra.Command{
		Use:   "restore <backup_file_path>",
		Short: "Restore the SQLite database from a backup file (WARNING: Overwrites current DB)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := args[0]
			if AppCfg == nil {
				return fmt.Errorf("configuration not loaded for db restore")
			}
			db, err := database.Connect(AppCfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open current database: %w", err)
			}

			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprintf(out, "WARNING: This will overwrite the current database at '%s' with the backup from '%s'.\n", AppCfg.DatabasePath, inputPath)
				fmt.Fprint(out, "Are you sure you want to continue? (yes/no): ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if strings.TrimSpace(answer) != "yes" {
					db.Close()
					fmt.Fprintln(out, "Restore cancelled.")
					return nil
				}
			}

			fmt.Fprintln(out, "Restoring database...")
			if err := db.Restore(AppCfg.DatabasePath, inputPath); err != nil {
				return fmt.Errorf("database restore failed: %w", err)
			}
			fmt.Fprintln(out, "Database restore successful. Please restart the bot if it is running.")
			return nil
		},
	}
	restoreCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return restoreCmd
}
