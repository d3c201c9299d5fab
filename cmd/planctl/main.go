package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomorrow-architect/planner-api/cmd/planctl/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "planctl",
		Short: "Admin tool for the planner API",
		Long:  "CLI tool for backing up, restoring, and reseeding the local plan snapshot",
	}

	rootCmd.AddCommand(commands.NewExportCmd())
	rootCmd.AddCommand(commands.NewImportCmd())
	rootCmd.AddCommand(commands.NewSeedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
