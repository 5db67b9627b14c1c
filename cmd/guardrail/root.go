package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "guardrail",
	Short: "Validation and accountability for AI assistant responses",
	Long: `Guardrail audits AI assistant responses against the task they were
asked to do, cross-referencing what the response claims against what
verifiably happened.

Validation layers:
- Template compliance: the declared template was actually followed
- Instruction alignment: the response covers the literal request
- Hallucination detection: implementation claims have supporting evidence
- Reality anchor: referenced files exist in the project (advisory)
- MCP tool guardian: claimed tool usage matches the execution trace
- Visual validator: styling claims hold on the rendered page (advisory)

Blocking layers fail the run; advisory layers only report.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
