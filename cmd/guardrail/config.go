package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okikut/guardrail/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify guardrail configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/guardrail/config.yaml
Project-specific overrides can be placed in .guardrail.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// configLayerNames in display order.
var configLayerNames = []string{
	"template_compliance",
	"instruction_alignment",
	"hallucination_detection",
	"reality_anchor",
	"mcp_tool_guardian",
	"visual_validator",
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	for _, name := range configLayerNames {
		enabled, blocking := layerFlags(cfg, name)
		fmt.Printf("layers.%s.enabled: %t\n", name, *enabled)
		fmt.Printf("layers.%s.blocking: %t\n", name, *blocking)
	}
	fmt.Printf("layers.instruction_alignment.keyword_threshold: %g\n", cfg.Layers.InstructionAlignment.KeywordThreshold)
	fmt.Printf("layers.hallucination_detection.code_block_window: %d\n", cfg.Layers.HallucinationDetection.CodeBlockWindow)
	fmt.Printf("layers.mcp_tool_guardian.advise_missing_usage: %t\n", cfg.Layers.MCPToolGuardian.AdviseMissingUsage)
	fmt.Printf("confidence.cue_window: %d\n", cfg.Confidence.CueWindow)
	fmt.Printf("confidence.base: %g\n", cfg.Confidence.Base)
	fmt.Printf("confidence.step: %g\n", cfg.Confidence.Step)
	fmt.Printf("confidence.max_cues: %d\n", cfg.Confidence.MaxCues)
	fmt.Printf("evidence.screenshot_dir: %s\n", cfg.Evidence.ScreenshotDir)
	fmt.Printf("evidence.save_reports: %t\n", cfg.Evidence.SaveReports)
	fmt.Printf("evidence.retention_days: %d\n", cfg.Evidence.RetentionDays)
	fmt.Printf("visual.timeout: %s\n", cfg.Visual.Timeout)
	fmt.Printf("visual.settle_delay: %s\n", cfg.Visual.SettleDelay)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// layerFlags returns pointers to the enabled/blocking fields of a layer
// key, or nils for an unknown layer. Layer-specific extras (thresholds,
// windows) are handled by the key switches instead.
func layerFlags(cfg *config.Config, name string) (enabled, blocking *bool) {
	switch name {
	case "template_compliance":
		return &cfg.Layers.TemplateCompliance.Enabled, &cfg.Layers.TemplateCompliance.Blocking
	case "instruction_alignment":
		return &cfg.Layers.InstructionAlignment.Enabled, &cfg.Layers.InstructionAlignment.Blocking
	case "hallucination_detection":
		return &cfg.Layers.HallucinationDetection.Enabled, &cfg.Layers.HallucinationDetection.Blocking
	case "reality_anchor":
		return &cfg.Layers.RealityAnchor.Enabled, &cfg.Layers.RealityAnchor.Blocking
	case "mcp_tool_guardian":
		return &cfg.Layers.MCPToolGuardian.Enabled, &cfg.Layers.MCPToolGuardian.Blocking
	case "visual_validator":
		return &cfg.Layers.VisualValidator.Enabled, &cfg.Layers.VisualValidator.Blocking
	default:
		return nil, nil
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	key = strings.ToLower(key)

	if rest, ok := strings.CutPrefix(key, "layers."); ok {
		name, field, found := strings.Cut(rest, ".")
		if found {
			switch {
			case name == "instruction_alignment" && field == "keyword_threshold":
				return strconv.FormatFloat(cfg.Layers.InstructionAlignment.KeywordThreshold, 'g', -1, 64), nil
			case name == "hallucination_detection" && field == "code_block_window":
				return strconv.Itoa(cfg.Layers.HallucinationDetection.CodeBlockWindow), nil
			case name == "mcp_tool_guardian" && field == "advise_missing_usage":
				return strconv.FormatBool(cfg.Layers.MCPToolGuardian.AdviseMissingUsage), nil
			}
			if enabled, blocking := layerFlags(cfg, name); enabled != nil {
				switch field {
				case "enabled":
					return strconv.FormatBool(*enabled), nil
				case "blocking":
					return strconv.FormatBool(*blocking), nil
				}
			}
		}
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}

	switch key {
	case "confidence.cue_window":
		return strconv.Itoa(cfg.Confidence.CueWindow), nil
	case "confidence.base":
		return strconv.FormatFloat(cfg.Confidence.Base, 'g', -1, 64), nil
	case "confidence.step":
		return strconv.FormatFloat(cfg.Confidence.Step, 'g', -1, 64), nil
	case "confidence.max_cues":
		return strconv.Itoa(cfg.Confidence.MaxCues), nil
	case "evidence.screenshot_dir":
		return cfg.Evidence.ScreenshotDir, nil
	case "evidence.save_reports":
		return strconv.FormatBool(cfg.Evidence.SaveReports), nil
	case "evidence.retention_days":
		return strconv.Itoa(cfg.Evidence.RetentionDays), nil
	case "visual.timeout":
		return cfg.Visual.Timeout.String(), nil
	case "visual.settle_delay":
		return cfg.Visual.SettleDelay.String(), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	key = strings.ToLower(key)

	if rest, ok := strings.CutPrefix(key, "layers."); ok {
		name, field, found := strings.Cut(rest, ".")
		if !found {
			return fmt.Errorf("unknown configuration key: %s", key)
		}
		switch {
		case name == "instruction_alignment" && field == "keyword_threshold":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid value for keyword_threshold: %w", err)
			}
			if f <= 0 || f > 1 {
				return fmt.Errorf("keyword_threshold must be in (0, 1], got %g", f)
			}
			cfg.Layers.InstructionAlignment.KeywordThreshold = f
			return nil
		case name == "hallucination_detection" && field == "code_block_window":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid value for code_block_window: %w", err)
			}
			if n <= 0 {
				return fmt.Errorf("code_block_window must be positive, got %d", n)
			}
			cfg.Layers.HallucinationDetection.CodeBlockWindow = n
			return nil
		case name == "mcp_tool_guardian" && field == "advise_missing_usage":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid value for advise_missing_usage: %w", err)
			}
			cfg.Layers.MCPToolGuardian.AdviseMissingUsage = b
			return nil
		}
		enabled, blocking := layerFlags(cfg, name)
		if enabled == nil {
			return fmt.Errorf("unknown layer: %s", name)
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		switch field {
		case "enabled":
			*enabled = b
		case "blocking":
			*blocking = b
		default:
			return fmt.Errorf("unknown configuration key: %s", key)
		}
		return nil
	}

	if field, ok := strings.CutPrefix(key, "confidence."); ok {
		return setConfidenceValue(cfg, field, value)
	}

	switch key {
	case "evidence.screenshot_dir":
		cfg.Evidence.ScreenshotDir = value
	case "evidence.save_reports":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for save_reports: %w", err)
		}
		cfg.Evidence.SaveReports = b
	case "evidence.retention_days":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for retention_days: %w", err)
		}
		cfg.Evidence.RetentionDays = n
	case "visual.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for timeout: %w", err)
		}
		cfg.Visual.Timeout = d
	case "visual.settle_delay":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for settle_delay: %w", err)
		}
		cfg.Visual.SettleDelay = d
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// setConfidenceValue handles the confidence scoring knobs.
func setConfidenceValue(cfg *config.Config, field, value string) error {
	switch field {
	case "cue_window", "max_cues":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", field, err)
		}
		if n <= 0 {
			return fmt.Errorf("%s must be positive, got %d", field, n)
		}
		if field == "cue_window" {
			cfg.Confidence.CueWindow = n
		} else {
			cfg.Confidence.MaxCues = n
		}
	case "base", "step":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", field, err)
		}
		if field == "base" {
			if f <= 0 || f > 1 {
				return fmt.Errorf("base must be in (0, 1], got %g", f)
			}
			cfg.Confidence.Base = f
		} else {
			if f <= 0 {
				return fmt.Errorf("step must be positive, got %g", f)
			}
			cfg.Confidence.Step = f
		}
	default:
		return fmt.Errorf("unknown configuration key: confidence.%s", field)
	}
	return nil
}
