package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomorrow-architect/planner-api/internal/config"
	"github.com/tomorrow-architect/planner-api/internal/database"
	"github.com/tomorrow-architect/planner-api/internal/models"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export the plan snapshot",
		Long:  "Export the persisted plan snapshot as pretty-printed JSON to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, cleanup, err := openSnapshotRepo()
			if err != nil {
				return err
			}
			defer cleanup()

			snap := repo.Load(context.Background())
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode snapshot: %w", err)
			}
			data = append(data, '\n')

			if len(args) == 1 {
				if err := os.WriteFile(args[0], data, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", args[0], err)
				}
				fmt.Printf("Exported %d plans to %s\n", len(snap.Plans), args[0])
				return nil
			}

			_, err = os.Stdout.Write(data)
			return err
		},
	}

	return cmd
}

// openSnapshotRepo opens the snapshot database named by configuration
func openSnapshotRepo() (*database.SnapshotRepository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}

	return database.NewSnapshotRepository(db), cleanup, nil
}

// confirmOrAbort asks for interactive confirmation unless yes is set
func confirmOrAbort(prompt string, yes bool) bool {
	if yes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	var answer string
	if _, err := fmt.Scanln(&answer); err != nil {
		return false
	}
	return answer == "y" || answer == "Y" || answer == "yes"
}

// saveAll persists a full plan collection, running migration normalization
func saveAll(repo *database.SnapshotRepository, plans []*models.Plan) (int, error) {
	snap := models.Migrate(plans)
	if err := repo.Save(context.Background(), snap.Plans); err != nil {
		return 0, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return len(snap.Plans), nil
}
