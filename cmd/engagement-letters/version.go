package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of engagement-letters",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("engagement-letters %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
