package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/aretw0/wayfinder/pkg/adapters/console"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant in the terminal",
	Long: `Runs the assistant locally: replies are printed with numbered buttons
and typing a number taps one. The chat user is registered on first use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inMemory, _ := cmd.Flags().GetBool("memory")
		as, _ := cmd.Flags().GetInt64("as")
		name, _ := cmd.Flags().GetString("name")

		a, err := newApp(cmd, appOptions{inMemory: inMemory})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		if _, err := a.records.FindIdentity(ctx, as); errors.Is(err, domain.ErrNotFound) {
			if _, err := a.records.CreateIdentity(ctx, as, domain.IdentityAttrs{}); err != nil {
				return fmt.Errorf("failed to register chat user: %w", err)
			}
		} else if err != nil {
			return err
		}

		var opts []console.Option
		if console.Interactive(os.Stdout) {
			render, err := console.NewRenderer()
			if err != nil {
				return err
			}
			opts = append(opts, console.WithRenderer(render))
			console.PrintBanner(os.Stdout, version)
		}
		c := console.New(os.Stdin, os.Stdout, domain.Sender{ExternalID: as, FirstName: name}, opts...)
		return c.Run(ctx, a.dispatcher(c))
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().Bool("memory", false, "Keep records in memory instead of DATABASE_PATH")
	chatCmd.Flags().Int64("as", 1, "External ID of the chat user; use a seeded operator ID to act as staff")
	chatCmd.Flags().String("name", "Local", "First name of the chat user")
}
