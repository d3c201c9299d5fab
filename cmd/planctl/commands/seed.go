package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomorrow-architect/planner-api/internal/models"
)

// NewSeedCmd creates the seed command
func NewSeedCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Reset the snapshot to the seed dataset",
		Long:  "Replace the persisted plan snapshot with the embedded seed dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed := models.SeedSnapshot()

			if !confirmOrAbort(fmt.Sprintf("Replace all current plans with the %d-plan seed dataset?", len(seed.Plans)), yes) {
				fmt.Println("Aborted")
				return nil
			}

			repo, cleanup, err := openSnapshotRepo()
			if err != nil {
				return err
			}
			defer cleanup()

			count, err := saveAll(repo, seed.Plans)
			if err != nil {
				return err
			}

			fmt.Printf("Seeded %d plans\n", count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}
