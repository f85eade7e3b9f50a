/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/portfolio-site/portfolio/config"
	"github.com/portfolio-site/portfolio/internal/logging"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Personal portfolio site with a small blog",
	Long: `Personal portfolio site with a small blog. Visitors can register,
log in and publish posts; a few informational pages are served alongside.

Configuration is read from the environment (and .env when ENV=dev), with an
optional YAML file named by CONFIG_FILE.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) logging.Logger {
	return logging.NewJSONLogger(os.Stderr, cfg.LogLevel)
}
