package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okikut/guardrail/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the guardrail version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("guardrail %s\n", version.Get())
	},
}
