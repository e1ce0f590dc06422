// libraryctl is the operational entrypoint: it prepares the database schema
// and optionally loads sample data. The interactive menus live outside this
// module and talk to the ledger through internal/app.
package main

import (
	"fmt"
	"os"

	"library-service/internal/app"
	"library-service/internal/seed"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "libraryctl",
		Short:        "Administer the library ledger database",
		SilenceUsage: true,
	}

	root.AddCommand(newMigrateCmd(), newSeedCmd(), newStatusCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			application, err := app.New(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			// app.New already ran the migrations.
			application.Logger.Info("migrations complete")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample catalog into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			application, err := app.New(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			return seed.Run(ctx, application.DB, application.Logger)
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print record counts per entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			application, err := app.New(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			snap, err := application.Ledger.Snapshot(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("books:        %d\n", len(snap.Books))
			fmt.Printf("readers:      %d\n", len(snap.Readers))
			fmt.Printf("librarians:   %d\n", len(snap.Librarians))
			fmt.Printf("loans:        %d\n", len(snap.Loans))
			fmt.Printf("reservations: %d\n", len(snap.Reservations))
			fmt.Printf("fines:        %d\n", len(snap.Fines))
			return nil
		},
	}
}
