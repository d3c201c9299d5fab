package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomorrow-architect/planner-api/internal/models"
)

// NewImportCmd creates the import command
func NewImportCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore plans from a backup file",
		Long:  "Replace the persisted plan snapshot with the plans decoded from a backup file (snapshot envelope, bare array, or pasted script file)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			plans, err := models.DecodePlansPayload(string(data))
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			if !confirmOrAbort(fmt.Sprintf("Replace all current plans with %d plans from %s?", len(plans), args[0]), yes) {
				fmt.Println("Aborted")
				return nil
			}

			repo, cleanup, err := openSnapshotRepo()
			if err != nil {
				return err
			}
			defer cleanup()

			count, err := saveAll(repo, plans)
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d plans\n", count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}
