package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trading Coach Configuration

[database]
# SQLite database path
path = "%s"

[analysis]
# Time window for each analysis pass, in days
window_days = 30
# Minimum closed trades required before analysis runs
min_trade_sample = 3
# Minimum occurrences before an analyzer flags a pattern
min_frequency = 2
# Days after which an unobserved pattern is deactivated
retention_days = 30
# Look-forward window for coaching-response correlation, in days
look_forward_days = 7
# Result-count caps for a single pass
max_trades = 500
max_sessions = 100
max_conversations = 100
# Include the coaching-response analyzer
include_coaching_feedback = true

[thresholds]
# Average P&L below which a behavior is flagged (dollars, negative)
avg_loss_threshold = -50.0
# Single-trade loss treated as outsized (dollars, negative)
outsized_loss_threshold = -200.0
# Average-loss boundaries for severity escalation
high_severity_avg_loss = -100.0
critical_avg_loss = -200.0
# Win rate below which an emotional state is flagged (0..1)
low_win_rate = 0.5
# Win rate below which a timing bucket is flagged (0..1)
timing_win_rate = 0.4
# Plan adherence below which a trade counts as a deviation (0..1)
adherence_cutoff = 0.7
# Margin by which planned trades must outperform unplanned (dollars)
impulsive_margin = 50.0
# Material difference from baseline for coaching response (dollars)
baseline_delta = 50.0

[scoring]
# Evidence-strength normalization ceilings
frequency_ceiling = 10.0
sample_ceiling = 20.0
impact_ceiling = 100.0

[insight]
# Maximum Critical/High patterns listed in the summary
max_priority_patterns = 3
# Maximum flattened focus recommendations
max_focus_recommendations = 5

[ui]
color_enabled = true
date_format = "02-Jan-2006"
`

// createTemplateConfig writes the default config template on first run.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dbPath := filepath.Join(configDir, "coach.db")
	content := fmt.Sprintf(configTemplate, dbPath)
	return os.WriteFile(path, []byte(content), 0644)
}
