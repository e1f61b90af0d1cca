// Command feria is the marketplace backend CLI: serve the API, manage the
// database, inspect routes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "feria",
	Short: "Feria — marketplace backend",
	Long:  "Feria is a multi-tenant marketplace backend. Use this CLI to run the API server and manage the database.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)
	rootCmd.AddCommand(dbIndexesCmd)
	rootCmd.AddCommand(dbSeedCmd)
	rootCmd.AddCommand(versionCmd)
}
