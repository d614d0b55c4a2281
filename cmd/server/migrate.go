package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"trackrate/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		conn, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close(conn)

		if err := db.Migrate(conn); err != nil {
			return err
		}
		log.Info().Str("driver", cfg.DBDriver).Msg("schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
