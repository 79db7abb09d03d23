// Command dbfiller synthesizes constraint-satisfying relational data from a
// JSON schema document and emits it as SQL, CSV, or JSON.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dbfiller",
	Short: "constraint-aware synthetic relational data generator",
}

func main() {
	rootCmd.AddCommand(generateCmd, validateCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
