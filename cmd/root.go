// Package cmd implements the command-line interface for the TigerFoodies
// service.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tigerfoodies/gofoodies/cmd/httpd"
	"github.com/tigerfoodies/gofoodies/cmd/jobs"
)

var rootCmd = &cobra.Command{
	Use:   "gofoodies",
	Short: "Free food listings for campus",
	Long:  `TigerFoodies backend: card API, live updates, and listserv import.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("gofoodies version 1.0.0")
		},
	})

	rootCmd.AddCommand(httpd.Command())
	rootCmd.AddCommand(jobs.MigrateCommand())
	rootCmd.AddCommand(jobs.SweepCommand())
	rootCmd.AddCommand(jobs.IngestCommand())
}
