package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vsr/internal/virtual"
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the navigation commands usable in step mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, c := range virtual.Commands() {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}
