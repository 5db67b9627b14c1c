package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okikut/guardrail/internal/history"
	"github.com/okikut/guardrail/internal/report"
)

var (
	historyProject   string
	historyLimit     int
	historyPruneDays int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect archived validation runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No archived runs.")
			return nil
		}

		for _, e := range entries {
			outcome := color.GreenString("PASS")
			if !e.Passed {
				outcome = color.RedString("FAIL")
			}
			fmt.Printf("%s  %s  %s  %d violation(s)\n",
				e.RunID, e.CreatedAt.Format(time.RFC3339), outcome, e.Violations)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the full report for an archived run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		rep, err := store.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Print(report.Render(rep))
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		retention := time.Duration(historyPruneDays) * 24 * time.Hour
		n, err := store.Prune(retention)
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d run(s) older than %d day(s).\n", n, historyPruneDays)
		return nil
	},
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyProject, "project", "", "Project root (default: current directory)")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum runs to list")
	historyPruneCmd.Flags().IntVar(&historyPruneDays, "days", 30, "Retention window in days")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)
}

func openHistory() (*history.Store, error) {
	root := historyProject
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = cwd
	}
	return history.Open(history.ProjectStorePath(root))
}
