package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avancea/ritmo/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "ritmo-configure",
		Short: "Administration tool for ritmo",
		Long:  "CLI tool for bootstrapping the workspace, toggling features and managing vacations",
	}

	rootCmd.AddCommand(commands.NewBootstrapCmd())
	rootCmd.AddCommand(commands.NewShowCmd())
	rootCmd.AddCommand(commands.NewFeaturesCmd())
	rootCmd.AddCommand(commands.NewVacationsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
