// Package config provides configuration management for the coaching engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Thresholds ThresholdConfig  `mapstructure:"thresholds"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	Insight    InsightConfig    `mapstructure:"insight"`
	UI         UIConfig         `mapstructure:"ui"`
}

// DatabaseConfig holds data store configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AnalysisConfig holds analysis-pass configuration.
type AnalysisConfig struct {
	WindowDays              int  `mapstructure:"window_days"`
	MinTradeSample          int  `mapstructure:"min_trade_sample"`
	MinFrequency            int  `mapstructure:"min_frequency"`
	RetentionDays           int  `mapstructure:"retention_days"`
	LookForwardDays         int  `mapstructure:"look_forward_days"`
	MaxTrades               int  `mapstructure:"max_trades"`
	MaxSessions             int  `mapstructure:"max_sessions"`
	MaxConversations        int  `mapstructure:"max_conversations"`
	IncludeCoachingFeedback bool `mapstructure:"include_coaching_feedback"`
}

// ThresholdConfig holds analyzer trigger thresholds. Dollar thresholds are
// negative values: an average P&L "beyond" the threshold is more negative
// than it.
type ThresholdConfig struct {
	AvgLossThreshold      float64 `mapstructure:"avg_loss_threshold"`
	OutsizedLossThreshold float64 `mapstructure:"outsized_loss_threshold"`
	HighSeverityAvgLoss   float64 `mapstructure:"high_severity_avg_loss"`
	CriticalAvgLoss       float64 `mapstructure:"critical_avg_loss"`
	LowWinRate            float64 `mapstructure:"low_win_rate"`
	TimingWinRate         float64 `mapstructure:"timing_win_rate"`
	AdherenceCutoff       float64 `mapstructure:"adherence_cutoff"`
	ImpulsiveMargin       float64 `mapstructure:"impulsive_margin"`
	BaselineDelta         float64 `mapstructure:"baseline_delta"`
}

// ScoringConfig holds evidence-strength normalization ceilings.
type ScoringConfig struct {
	FrequencyCeiling float64 `mapstructure:"frequency_ceiling"`
	SampleCeiling    float64 `mapstructure:"sample_ceiling"`
	ImpactCeiling    float64 `mapstructure:"impact_ceiling"`
}

// InsightConfig holds coaching-insight summary caps.
type InsightConfig struct {
	MaxPriorityPatterns     int `mapstructure:"max_priority_patterns"`
	MaxFocusRecommendations int `mapstructure:"max_focus_recommendations"`
}

// UIConfig holds CLI output configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trading-coach"
	}
	return filepath.Join(home, ".config", "trading-coach")
}

// Default returns a Config populated with every default value.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(DefaultConfigDir(), "coach.db"),
		},
		Analysis: AnalysisConfig{
			WindowDays:              30,
			MinTradeSample:          3,
			MinFrequency:            2,
			RetentionDays:           30,
			LookForwardDays:         7,
			MaxTrades:               500,
			MaxSessions:             100,
			MaxConversations:        100,
			IncludeCoachingFeedback: true,
		},
		Thresholds: ThresholdConfig{
			AvgLossThreshold:      -50,
			OutsizedLossThreshold: -200,
			HighSeverityAvgLoss:   -100,
			CriticalAvgLoss:       -200,
			LowWinRate:            0.5,
			TimingWinRate:         0.4,
			AdherenceCutoff:       0.7,
			ImpulsiveMargin:       50,
			BaselineDelta:         50,
		},
		Scoring: ScoringConfig{
			FrequencyCeiling: 10,
			SampleCeiling:    20,
			ImpactCeiling:    100,
		},
		Insight: InsightConfig{
			MaxPriorityPatterns:     3,
			MaxFocusRecommendations: 5,
		},
		UI: UIConfig{
			ColorEnabled: true,
			DateFormat:   "02-Jan-2006",
		},
	}
}

// Load loads configuration from the specified directory, falling back to
// defaults for anything not set. If configDir is empty, the default config
// directory is used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
		// First run: write a template so thresholds are discoverable.
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("writing config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("database.path", def.Database.Path)

	v.SetDefault("analysis.window_days", def.Analysis.WindowDays)
	v.SetDefault("analysis.min_trade_sample", def.Analysis.MinTradeSample)
	v.SetDefault("analysis.min_frequency", def.Analysis.MinFrequency)
	v.SetDefault("analysis.retention_days", def.Analysis.RetentionDays)
	v.SetDefault("analysis.look_forward_days", def.Analysis.LookForwardDays)
	v.SetDefault("analysis.max_trades", def.Analysis.MaxTrades)
	v.SetDefault("analysis.max_sessions", def.Analysis.MaxSessions)
	v.SetDefault("analysis.max_conversations", def.Analysis.MaxConversations)
	v.SetDefault("analysis.include_coaching_feedback", def.Analysis.IncludeCoachingFeedback)

	v.SetDefault("thresholds.avg_loss_threshold", def.Thresholds.AvgLossThreshold)
	v.SetDefault("thresholds.outsized_loss_threshold", def.Thresholds.OutsizedLossThreshold)
	v.SetDefault("thresholds.high_severity_avg_loss", def.Thresholds.HighSeverityAvgLoss)
	v.SetDefault("thresholds.critical_avg_loss", def.Thresholds.CriticalAvgLoss)
	v.SetDefault("thresholds.low_win_rate", def.Thresholds.LowWinRate)
	v.SetDefault("thresholds.timing_win_rate", def.Thresholds.TimingWinRate)
	v.SetDefault("thresholds.adherence_cutoff", def.Thresholds.AdherenceCutoff)
	v.SetDefault("thresholds.impulsive_margin", def.Thresholds.ImpulsiveMargin)
	v.SetDefault("thresholds.baseline_delta", def.Thresholds.BaselineDelta)

	v.SetDefault("scoring.frequency_ceiling", def.Scoring.FrequencyCeiling)
	v.SetDefault("scoring.sample_ceiling", def.Scoring.SampleCeiling)
	v.SetDefault("scoring.impact_ceiling", def.Scoring.ImpactCeiling)

	v.SetDefault("insight.max_priority_patterns", def.Insight.MaxPriorityPatterns)
	v.SetDefault("insight.max_focus_recommendations", def.Insight.MaxFocusRecommendations)

	v.SetDefault("ui.color_enabled", def.UI.ColorEnabled)
	v.SetDefault("ui.date_format", def.UI.DateFormat)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COACH_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("COACH_LOG_LEVEL"); v != "" {
		// Consumed by the CLI when wiring the logger.
		_ = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Analysis.WindowDays <= 0 {
		return fmt.Errorf("analysis.window_days must be positive")
	}
	if c.Analysis.MinTradeSample < 1 {
		return fmt.Errorf("analysis.min_trade_sample must be at least 1")
	}
	if c.Analysis.MinFrequency < 1 {
		return fmt.Errorf("analysis.min_frequency must be at least 1")
	}
	if c.Analysis.RetentionDays <= 0 {
		return fmt.Errorf("analysis.retention_days must be positive")
	}
	if c.Analysis.LookForwardDays <= 0 {
		return fmt.Errorf("analysis.look_forward_days must be positive")
	}
	if c.Thresholds.AvgLossThreshold >= 0 {
		return fmt.Errorf("thresholds.avg_loss_threshold must be negative")
	}
	if c.Thresholds.OutsizedLossThreshold >= 0 {
		return fmt.Errorf("thresholds.outsized_loss_threshold must be negative")
	}
	if c.Thresholds.LowWinRate < 0 || c.Thresholds.LowWinRate > 1 {
		return fmt.Errorf("thresholds.low_win_rate must be between 0 and 1")
	}
	if c.Thresholds.TimingWinRate < 0 || c.Thresholds.TimingWinRate > 1 {
		return fmt.Errorf("thresholds.timing_win_rate must be between 0 and 1")
	}
	if c.Thresholds.AdherenceCutoff < 0 || c.Thresholds.AdherenceCutoff > 1 {
		return fmt.Errorf("thresholds.adherence_cutoff must be between 0 and 1")
	}
	if c.Scoring.FrequencyCeiling <= 0 || c.Scoring.SampleCeiling <= 0 || c.Scoring.ImpactCeiling <= 0 {
		return fmt.Errorf("scoring ceilings must be positive")
	}
	if c.Insight.MaxPriorityPatterns < 1 {
		return fmt.Errorf("insight.max_priority_patterns must be at least 1")
	}
	if c.Insight.MaxFocusRecommendations < 1 {
		return fmt.Errorf("insight.max_focus_recommendations must be at least 1")
	}
	return nil
}
