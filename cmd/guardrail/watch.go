package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/okikut/guardrail/internal/config"
	"github.com/okikut/guardrail/internal/tui"
	"github.com/okikut/guardrail/internal/validation"
	"github.com/okikut/guardrail/internal/watcher"
	"github.com/okikut/guardrail/pkg/models"
)

var (
	watchRequest   string
	watchProject   string
	watchTemplate  string
	watchDevServer string
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and validate response files as they land",
	Long: `Watch monitors a directory for .md and .txt files being written and
validates each one against the task context as it appears. Results show
in a live terminal view.

The task context is fixed for the session via flags; the project root
defaults to the watched directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchRequest, "request", "", "Original user request text")
	watchCmd.Flags().StringVar(&watchProject, "project", "", "Project root (default: watched directory)")
	watchCmd.Flags().StringVar(&watchTemplate, "template", "", "Template path responses should follow")
	watchCmd.Flags().StringVar(&watchDevServer, "dev-server", "", "Dev server URL for visual validation")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	projectRoot := watchProject
	if projectRoot == "" {
		projectRoot = dir
	}
	taskCtx := models.Context{
		UserRequest:  watchRequest,
		ProjectRoot:  projectRoot,
		TemplatePath: watchTemplate,
		DevServerURL: watchDevServer,
	}
	if err := taskCtx.Validate(); err != nil {
		return err
	}

	w, err := watcher.New(dir)
	if err != nil {
		return err
	}
	defer w.Close()

	prog := tea.NewProgram(tui.New(dir))
	pipe := validation.New(cfg.PipelineConfig())

	go func() {
		for ev := range w.Events() {
			runID := uuid.NewString()
			prog.Send(tui.RunStartedMsg{RunID: runID, Path: ev.Path})
			go func(runID, path string) {
				prog.Send(validateFile(cmd.Context(), pipe, cfg, taskCtx, runID, path))
			}(runID, ev.Path)
		}
	}()

	_, err = prog.Run()
	return err
}

// validateFile runs one watch-mode validation. Evidence is regathered per
// run, including a fresh dev-server capture when --dev-server is set;
// provider warnings are suppressed so they cannot tear the TUI.
func validateFile(ctx context.Context, pipe *validation.Pipeline, cfg *config.Config, taskCtx models.Context, runID, path string) tui.RunFinishedMsg {
	data, err := os.ReadFile(path)
	if err != nil {
		return tui.RunFinishedMsg{RunID: runID, Err: err}
	}

	bundle := gatherEvidence(ctx, cfg, taskCtx, evidenceOptions{visual: true, quiet: true})

	rep, err := pipe.Validate(string(data), taskCtx, bundle)
	return tui.RunFinishedMsg{RunID: runID, Report: rep, Err: err}
}
