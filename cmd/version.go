package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the moniker-strip version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("moniker-strip %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
