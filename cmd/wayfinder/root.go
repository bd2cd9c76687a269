package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "wayfinder",
	Short: "Wayfinder is a chat assistant for workshop customers and staff",
	Long: `Wayfinder serves customers (feedback requests, reviews) and staff
(invitations, mailings, statistics) through inline-button menus in a chat.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSlice("env", []string{".env"}, "Dotenv files to load before reading the environment")
}
