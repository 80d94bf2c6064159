package commands

import (
	"content-qa-cms/config"
	"content-qa-cms/repositories"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.InitDB(app.cfg.Database, false)
		if err != nil {
			return err
		}
		if err := repositories.AutoMigrate(db); err != nil {
			return err
		}
		green.Fprintf(cmd.OutOrStdout(), "✓ schema migrated on %s\n", app.cfg.Database.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
