// Package main is the entry point for the sheet API server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sheet-api",
	Short: "Character advancement and progression server",
	Long:  `sheet-api runs the advancement engine for persisted characters: leveling, advancement apply/reverse, and the computed sheet overlay.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(adminCmd)
}
