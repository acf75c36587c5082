package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"worldforge/internal/parser"
)

func guideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guide",
		Short: "Print the text notation guide",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), parser.FormatGuide)
		},
	}
}
