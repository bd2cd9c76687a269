package main

import (
	"fmt"

	"github.com/aretw0/wayfinder/internal/config"
	"github.com/aretw0/wayfinder/pkg/adapters/sqlite"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load roles, workshops, contact methods and operators into the database",
	Long: `Applies a YAML seed file to DATABASE_PATH. Records are matched by slug or
external ID, so running the same seed twice changes nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		envFiles, _ := cmd.Flags().GetStringSlice("env")
		settings, err := config.Load(envFiles...)
		if err != nil {
			return err
		}
		seed, err := config.LoadSeed(args[0])
		if err != nil {
			return err
		}

		store, err := sqlite.Open(settings.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.ApplySeed(cmd.Context(), seed); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %s to %s: %d roles, %d workshops, %d contact methods, %d operators\n",
			args[0], settings.DatabasePath, len(seed.Roles), len(seed.Workshops), len(seed.ContactMethods), len(seed.Operators))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
