// Package config handles configuration loading for guardrail.
// It supports XDG config paths, project-level overrides, and built-in
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/okikut/guardrail/internal/claims"
	"github.com/okikut/guardrail/internal/validation"
)

// Config holds all configuration for guardrail.
type Config struct {
	Layers     LayersConfig     `mapstructure:"layers"`
	Confidence ConfidenceConfig `mapstructure:"confidence"`
	Evidence   EvidenceConfig   `mapstructure:"evidence"`
	Visual     VisualConfig     `mapstructure:"visual"`
}

// LayerConfig holds the policy for one validation layer.
type LayerConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Blocking bool `mapstructure:"blocking"`
}

// AlignmentConfig extends the layer policy with the keyword threshold.
type AlignmentConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Blocking bool `mapstructure:"blocking"`
	// KeywordThreshold is the fraction of request keywords the response
	// must cover. No canonical value exists; majority is the default.
	KeywordThreshold float64 `mapstructure:"keyword_threshold"`
}

// HallucinationConfig extends the layer policy with the code-block window.
type HallucinationConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Blocking bool `mapstructure:"blocking"`
	// CodeBlockWindow is how close (in bytes) a code block must be to an
	// implementation claim to corroborate it.
	CodeBlockWindow int `mapstructure:"code_block_window"`
}

// GuardianConfig extends the layer policy with the opt-in advisory check
// for requests that imply a tool run when none was executed.
type GuardianConfig struct {
	Enabled            bool `mapstructure:"enabled"`
	Blocking           bool `mapstructure:"blocking"`
	AdviseMissingUsage bool `mapstructure:"advise_missing_usage"`
}

// ConfidenceConfig tunes claim-confidence scoring during extraction.
type ConfidenceConfig struct {
	// CueWindow is the number of bytes inspected on each side of a match
	// when counting corroborating cues.
	CueWindow int `mapstructure:"cue_window"`
	// Base is the confidence of a match with zero corroborating cues.
	Base float64 `mapstructure:"base"`
	// Step is the confidence added per corroborating cue.
	Step float64 `mapstructure:"step"`
	// MaxCues caps how many cues raise the score.
	MaxCues int `mapstructure:"max_cues"`
}

// LayersConfig holds per-layer policies, keyed like the config file.
type LayersConfig struct {
	TemplateCompliance     LayerConfig         `mapstructure:"template_compliance"`
	InstructionAlignment   AlignmentConfig     `mapstructure:"instruction_alignment"`
	HallucinationDetection HallucinationConfig `mapstructure:"hallucination_detection"`
	RealityAnchor          LayerConfig         `mapstructure:"reality_anchor"`
	MCPToolGuardian        GuardianConfig      `mapstructure:"mcp_tool_guardian"`
	VisualValidator        LayerConfig         `mapstructure:"visual_validator"`
}

// EvidenceConfig holds evidence collection settings.
type EvidenceConfig struct {
	// ScreenshotDir is where visual captures are written.
	ScreenshotDir string `mapstructure:"screenshot_dir"`
	// SaveReports enables the project-local report history.
	SaveReports bool `mapstructure:"save_reports"`
	// RetentionDays bounds how long history entries are kept.
	RetentionDays int `mapstructure:"retention_days"`
}

// VisualConfig holds headless-browser capture settings.
type VisualConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

// Load loads configuration from XDG paths and project overrides.
// Precedence (highest to lowest):
// 1. Project config (.guardrail.yaml in current directory or parent)
// 2. User config (~/.config/guardrail/config.yaml)
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides, e.g. GUARDRAIL_EVIDENCE_RETENTION_DAYS.
	v.SetEnvPrefix("guardrail")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Layers: LayersConfig{
			TemplateCompliance:     LayerConfig{Enabled: true, Blocking: true},
			InstructionAlignment:   AlignmentConfig{Enabled: true, Blocking: true, KeywordThreshold: 0.5},
			HallucinationDetection: HallucinationConfig{Enabled: true, Blocking: true, CodeBlockWindow: 1200},
			RealityAnchor:          LayerConfig{Enabled: true, Blocking: false},
			MCPToolGuardian:        GuardianConfig{Enabled: true, Blocking: true},
			VisualValidator:        LayerConfig{Enabled: true, Blocking: false},
		},
		Confidence: ConfidenceConfig{
			CueWindow: 80,
			Base:      0.5,
			Step:      0.1,
			MaxCues:   4,
		},
		Evidence: EvidenceConfig{
			ScreenshotDir: ".guardrail/screenshots",
			SaveReports:   true,
			RetentionDays: 30,
		},
		Visual: VisualConfig{
			Timeout:     30 * time.Second,
			SettleDelay: 2 * time.Second,
		},
	}
}

// PipelineConfig maps the file configuration onto the explicit policy the
// pipeline is constructed with.
func (c *Config) PipelineConfig() validation.Config {
	return validation.Config{
		TemplateCompliance: policy(c.Layers.TemplateCompliance),
		InstructionAlignment: validation.LayerPolicy{
			Enabled:  c.Layers.InstructionAlignment.Enabled,
			Blocking: c.Layers.InstructionAlignment.Blocking,
		},
		HallucinationDetection: validation.LayerPolicy{
			Enabled:  c.Layers.HallucinationDetection.Enabled,
			Blocking: c.Layers.HallucinationDetection.Blocking,
		},
		RealityAnchor: policy(c.Layers.RealityAnchor),
		MCPToolGuardian: validation.LayerPolicy{
			Enabled:  c.Layers.MCPToolGuardian.Enabled,
			Blocking: c.Layers.MCPToolGuardian.Blocking,
		},
		VisualValidator:  policy(c.Layers.VisualValidator),
		KeywordThreshold: c.Layers.InstructionAlignment.KeywordThreshold,
		CodeBlockWindow:  c.Layers.HallucinationDetection.CodeBlockWindow,
		Confidence: claims.Scoring{
			CueWindow: c.Confidence.CueWindow,
			Base:      c.Confidence.Base,
			Step:      c.Confidence.Step,
			MaxCues:   c.Confidence.MaxCues,
		},
		AdviseMissingToolUse: c.Layers.MCPToolGuardian.AdviseMissingUsage,
	}
}

func policy(lc LayerConfig) validation.LayerPolicy {
	return validation.LayerPolicy{Enabled: lc.Enabled, Blocking: lc.Blocking}
}

// Save writes the configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))

	layers := map[string]LayerConfig{
		"template_compliance": cfg.Layers.TemplateCompliance,
		"reality_anchor":      cfg.Layers.RealityAnchor,
		"visual_validator":    cfg.Layers.VisualValidator,
	}
	for name, lc := range layers {
		v.Set("layers."+name+".enabled", lc.Enabled)
		v.Set("layers."+name+".blocking", lc.Blocking)
	}
	v.Set("layers.instruction_alignment.enabled", cfg.Layers.InstructionAlignment.Enabled)
	v.Set("layers.instruction_alignment.blocking", cfg.Layers.InstructionAlignment.Blocking)
	v.Set("layers.instruction_alignment.keyword_threshold", cfg.Layers.InstructionAlignment.KeywordThreshold)
	v.Set("layers.hallucination_detection.enabled", cfg.Layers.HallucinationDetection.Enabled)
	v.Set("layers.hallucination_detection.blocking", cfg.Layers.HallucinationDetection.Blocking)
	v.Set("layers.hallucination_detection.code_block_window", cfg.Layers.HallucinationDetection.CodeBlockWindow)
	v.Set("layers.mcp_tool_guardian.enabled", cfg.Layers.MCPToolGuardian.Enabled)
	v.Set("layers.mcp_tool_guardian.blocking", cfg.Layers.MCPToolGuardian.Blocking)
	v.Set("layers.mcp_tool_guardian.advise_missing_usage", cfg.Layers.MCPToolGuardian.AdviseMissingUsage)
	v.Set("confidence.cue_window", cfg.Confidence.CueWindow)
	v.Set("confidence.base", cfg.Confidence.Base)
	v.Set("confidence.step", cfg.Confidence.Step)
	v.Set("confidence.max_cues", cfg.Confidence.MaxCues)
	v.Set("evidence.screenshot_dir", cfg.Evidence.ScreenshotDir)
	v.Set("evidence.save_reports", cfg.Evidence.SaveReports)
	v.Set("evidence.retention_days", cfg.Evidence.RetentionDays)
	v.Set("visual.timeout", cfg.Visual.Timeout.String())
	v.Set("visual.settle_delay", cfg.Visual.SettleDelay.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it
// exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("layers.template_compliance.enabled", true)
	v.SetDefault("layers.template_compliance.blocking", true)
	v.SetDefault("layers.instruction_alignment.enabled", true)
	v.SetDefault("layers.instruction_alignment.blocking", true)
	v.SetDefault("layers.instruction_alignment.keyword_threshold", 0.5)
	v.SetDefault("layers.hallucination_detection.enabled", true)
	v.SetDefault("layers.hallucination_detection.blocking", true)
	v.SetDefault("layers.hallucination_detection.code_block_window", 1200)
	v.SetDefault("layers.reality_anchor.enabled", true)
	v.SetDefault("layers.reality_anchor.blocking", false)
	v.SetDefault("layers.mcp_tool_guardian.enabled", true)
	v.SetDefault("layers.mcp_tool_guardian.blocking", true)
	v.SetDefault("layers.mcp_tool_guardian.advise_missing_usage", false)
	v.SetDefault("layers.visual_validator.enabled", true)
	v.SetDefault("layers.visual_validator.blocking", false)

	v.SetDefault("confidence.cue_window", 80)
	v.SetDefault("confidence.base", 0.5)
	v.SetDefault("confidence.step", 0.1)
	v.SetDefault("confidence.max_cues", 4)

	v.SetDefault("evidence.screenshot_dir", ".guardrail/screenshots")
	v.SetDefault("evidence.save_reports", true)
	v.SetDefault("evidence.retention_days", 30)

	v.SetDefault("visual.timeout", "30s")
	v.SetDefault("visual.settle_delay", "2s")
}

// getUserConfigDir returns the XDG config directory for guardrail.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "guardrail")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "guardrail")
	}
	return filepath.Join(home, ".config", "guardrail")
}

// findProjectConfig searches for .guardrail.yaml in the current directory
// and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".guardrail.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}
