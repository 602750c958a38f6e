package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saydalia/saydalia/config"
	"github.com/saydalia/saydalia/database/seeders"
	"github.com/saydalia/saydalia/pkg/database"
)

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

// saydalia db:index — create the collection indexes.
var dbIndexCmd = &cobra.Command{
	Use:   "db:index",
	Short: "Create the MongoDB indexes (unique email, one pharmacy per admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := database.EnsureIndexes(ctx, database.DB); err != nil {
			return err
		}
		fmt.Println("Indexes in place.")
		return nil
	},
}

// saydalia seed — load demo data for local development.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all registered database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if err := database.EnsureIndexes(ctx, database.DB); err != nil {
			return err
		}
		return seeders.Run(ctx)
	},
}
