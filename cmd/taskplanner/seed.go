package main

import (
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the schema and seed the default vocabulary",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeDB, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer closeDB()
		cmd.Println("schema migrated, default vocabulary up to date")
		return nil
	},
}
