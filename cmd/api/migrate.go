package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return db.Close()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
