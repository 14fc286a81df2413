package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spendfolio/spendfolio/internal/ingest"
)

func importCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "import <file.ofx>",
		Short: "Import consumption records from an OFX/QFX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer func() { _ = file.Close() }()

			importer := ingest.NewImporter(store, nil)
			count, err := importer.ImportFile(ctx, user, file)
			if err != nil {
				return err
			}

			cmd.Printf("Imported %d consumption records for user %s\n", count, user)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "external user id to import for")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
