/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/portfolio-site/portfolio/config"
	"github.com/portfolio-site/portfolio/internal/db"
	"github.com/spf13/cobra"
)

// initDBCmd represents the init-db command
var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Clear the existing data and create new tables",
	Long: `Drops every site table and recreates the schema. All users and posts
are lost. Usage:

	portfolio init-db
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		pool, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		scope := db.NewScope(pool)
		defer func() {
			_ = scope.Release()
		}()
		conn, err := scope.Acquire(ctx)
		if err != nil {
			return err
		}

		if err := db.InitSchema(ctx, conn, cfg.Database.Driver); err != nil {
			return fmt.Errorf("init schema failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Initialized the database.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}
