package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okikut/guardrail/internal/config"
	"github.com/okikut/guardrail/internal/evidence"
	"github.com/okikut/guardrail/internal/history"
	"github.com/okikut/guardrail/internal/report"
	"github.com/okikut/guardrail/internal/validation"
	"github.com/okikut/guardrail/pkg/models"
)

var (
	validateRequest     string
	validateContextFile string
	validateProject     string
	validateTemplate    string
	validateDevServer   string
	validateTraceFile   string
	validateJSON        bool
	validateNoVisual    bool
	validateNoHistory   bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <response-file>",
	Short: "Validate an assistant response against its task context",
	Long: `Validate reads a response file, extracts the claims it makes, gathers
evidence (project snapshot, tool trace, optionally a rendered-page
capture), runs every enabled validation layer, and prints the report.

The task context comes from --context (a YAML file) and/or the
individual flags, which take precedence.

Examples:
  guardrail validate response.md --request "add a hero section"
  guardrail validate response.md --context task.yaml --trace trace.json
  guardrail validate response.md --context task.yaml --json | jq .violations`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateRequest, "request", "", "Original user request text")
	validateCmd.Flags().StringVar(&validateContextFile, "context", "", "Task context YAML file")
	validateCmd.Flags().StringVar(&validateProject, "project", "", "Project root (default: current directory)")
	validateCmd.Flags().StringVar(&validateTemplate, "template", "", "Template path the response was asked to follow")
	validateCmd.Flags().StringVar(&validateDevServer, "dev-server", "", "Dev server URL for visual validation")
	validateCmd.Flags().StringVar(&validateTraceFile, "trace", "", "Tool-invocation trace JSON file")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output the report as JSON")
	validateCmd.Flags().BoolVar(&validateNoVisual, "no-visual", false, "Skip headless-browser capture")
	validateCmd.Flags().BoolVar(&validateNoHistory, "no-history", false, "Do not archive the report")
}

func runValidate(cmd *cobra.Command, args []string) error {
	responseData, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read response file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	taskCtx, err := buildContext()
	if err != nil {
		return err
	}

	bundle := gatherEvidence(cmd.Context(), cfg, taskCtx, evidenceOptions{
		traceFile: validateTraceFile,
		visual:    !validateNoVisual,
	})

	pipe := validation.New(cfg.PipelineConfig())
	rep, err := pipe.Validate(string(responseData), taskCtx, bundle)
	if err != nil {
		return err
	}

	if validateJSON {
		data, err := rep.MarshalIndent()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Print(report.Render(rep))
	}

	runID := uuid.NewString()
	if cfg.Evidence.SaveReports && !validateNoHistory {
		if err := archiveReport(cfg, taskCtx.ProjectRoot, runID, rep); err != nil {
			color.Yellow("warning: could not archive report: %v", err)
		} else if !validateJSON {
			fmt.Println(color.New(color.Faint).Sprintf("report archived as run %s", runID))
		}
	}

	if !rep.Passed {
		os.Exit(1)
	}
	return nil
}

// buildContext assembles the task context from the context file and flag
// overrides. Flags win.
func buildContext() (models.Context, error) {
	var taskCtx models.Context

	if validateContextFile != "" {
		data, err := os.ReadFile(validateContextFile)
		if err != nil {
			return taskCtx, fmt.Errorf("read context file: %w", err)
		}
		if err := yaml.Unmarshal(data, &taskCtx); err != nil {
			return taskCtx, fmt.Errorf("parse context file %s: %w", validateContextFile, err)
		}
	}

	if validateRequest != "" {
		taskCtx.UserRequest = validateRequest
	}
	if validateProject != "" {
		taskCtx.ProjectRoot = validateProject
	}
	if validateTemplate != "" {
		taskCtx.TemplatePath = validateTemplate
	}
	if validateDevServer != "" {
		taskCtx.DevServerURL = validateDevServer
	}

	if taskCtx.ProjectRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return taskCtx, fmt.Errorf("get working directory: %w", err)
		}
		taskCtx.ProjectRoot = cwd
	}

	if err := taskCtx.Validate(); err != nil {
		return taskCtx, fmt.Errorf("incomplete task context (set --request or --context): %w", err)
	}
	return taskCtx, nil
}

// evidenceOptions selects which evidence providers a run gathers. quiet
// suppresses provider warnings, which would corrupt the watch TUI.
type evidenceOptions struct {
	traceFile string
	visual    bool
	quiet     bool
}

// gatherEvidence runs the evidence providers. Provider failures degrade
// the bundle, they never abort validation.
func gatherEvidence(ctx context.Context, cfg *config.Config, taskCtx models.Context, opts evidenceOptions) *evidence.Bundle {
	files, ok := evidence.Snapshot(taskCtx.ProjectRoot)
	bundle := &evidence.Bundle{Files: files, FilesAvailable: ok}

	if taskCtx.TemplatePath != "" {
		bundle.Template = evidence.StatTemplate(taskCtx.ProjectRoot, taskCtx.TemplatePath)
	}

	if opts.traceFile != "" {
		trace, err := evidence.LoadTrace(opts.traceFile)
		if err != nil {
			if !opts.quiet {
				color.Yellow("warning: %v; treating trace as empty", err)
			}
		} else {
			bundle.Trace = trace
		}
	}

	if taskCtx.DevServerURL != "" && opts.visual {
		shotDir := cfg.Evidence.ScreenshotDir
		if shotDir != "" && !filepath.IsAbs(shotDir) {
			shotDir = filepath.Join(taskCtx.ProjectRoot, shotDir)
		}
		bundle.Visual = evidence.Capture(ctx, taskCtx.DevServerURL, evidence.CaptureOptions{
			Timeout:       cfg.Visual.Timeout,
			SettleDelay:   cfg.Visual.SettleDelay,
			ScreenshotDir: shotDir,
		})
		if bundle.Visual == nil && !opts.quiet {
			color.Yellow("warning: dev server %s unreachable; visual layer will be skipped", taskCtx.DevServerURL)
		}
	}

	return bundle
}

// archiveReport stores the report in the project-local history and applies
// the retention policy.
func archiveReport(cfg *config.Config, projectRoot, runID string, rep *report.Report) error {
	store, err := history.Open(history.ProjectStorePath(projectRoot))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(runID, rep); err != nil {
		return err
	}
	if cfg.Evidence.RetentionDays > 0 {
		retention := time.Duration(cfg.Evidence.RetentionDays) * 24 * time.Hour
		if _, err := store.Prune(retention); err != nil {
			return err
		}
	}
	return nil
}
