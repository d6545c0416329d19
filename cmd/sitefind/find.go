package main

import (
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find [query...]",
	Short: "Search the index (alias for direct search)",
	Long: `Search the site index with a fuzzy query.
If no query is provided, the interactive overlay is launched.

This command is an alias for the direct search: 'sitefind <query>'
You can use either 'sitefind find react' or just 'sitefind react'

Examples:
  sitefind find react
  sitefind find kubernetes operator
  sitefind find --json hooks`,
	RunE: runSearch, // Use the same function as root command (handles multi-word queries)
}

func init() {
	rootCmd.AddCommand(findCmd)
}
