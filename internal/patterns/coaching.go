package patterns

import (
	"fmt"
	"sort"

	"trading-coach/internal/aggregate"
	"trading-coach/internal/models"
	"trading-coach/pkg/utils"
)

// CoachingResponseAnalyzer correlates coaching-session trigger tags with the
// trades that followed each session, against the user's overall baseline.
type CoachingResponseAnalyzer struct{}

func (a *CoachingResponseAnalyzer) Name() string { return "coaching-response" }

func (a *CoachingResponseAnalyzer) Type() models.PatternType { return models.PatternPerformancePattern }

// Analyze flags a trigger tag when the trades inside the look-forward window
// after sessions carrying that tag average materially above or below the
// user's baseline P&L. The direction (improvement or regression) is part of
// the description.
func (a *CoachingResponseAnalyzer) Analyze(ac *aggregate.Context, p Params) ([]models.CandidatePattern, error) {
	baseline := ac.Overall.AvgPnL

	type followStats struct {
		count    int
		totalPnL float64
		sessions int
	}
	byTrigger := make(map[string]*followStats)

	for _, session := range ac.Sessions {
		if len(session.EmotionalTriggers) == 0 {
			continue
		}
		windowEnd := session.CreatedAt.AddDate(0, 0, p.LookForwardDays)

		var count int
		var total float64
		for _, t := range ac.ClosedTrades {
			if t.EntryTime.After(session.CreatedAt) && !t.EntryTime.After(windowEnd) {
				count++
				total += t.PnL()
			}
		}
		if count == 0 {
			continue
		}

		for _, trigger := range session.EmotionalTriggers {
			fs, ok := byTrigger[trigger]
			if !ok {
				fs = &followStats{}
				byTrigger[trigger] = fs
			}
			fs.count += count
			fs.totalPnL += total
			fs.sessions++
		}
	}

	triggers := make([]string, 0, len(byTrigger))
	for trigger := range byTrigger {
		triggers = append(triggers, trigger)
	}
	sort.Strings(triggers)

	var out []models.CandidatePattern
	for _, trigger := range triggers {
		fs := byTrigger[trigger]
		if fs.count < p.MinFrequency {
			continue
		}

		avgAfter := fs.totalPnL / float64(fs.count)
		delta := avgAfter - baseline
		if delta < p.Thresholds.BaselineDelta && delta > -p.Thresholds.BaselineDelta {
			continue
		}

		direction := "improvement"
		severity := models.SeverityLow
		if delta < 0 {
			direction = "regression"
			severity = severityForAvgLoss(delta, p.Thresholds)
		}

		out = append(out, models.CandidatePattern{
			PatternType: models.PatternPerformancePattern,
			PatternName: fmt.Sprintf("Post-Coaching Response: %s", trigger),
			Description: fmt.Sprintf(
				"After %d sessions tagged %q, %d trades averaged %s versus a %s baseline, a %s per-trade %s",
				fs.sessions, trigger, fs.count, utils.FormatCurrency(avgAfter),
				utils.FormatCurrency(baseline), utils.FormatCurrency(delta), direction),
			Frequency:           fs.sessions,
			SampleSize:          fs.count,
			Severity:            severity,
			ImpactOnPerformance: delta * float64(fs.count),
			TriggerConditions:   []string{fmt.Sprintf("coaching_trigger:%s", trigger)},
			TradingContext: models.TradingContext{
				"sessions":     float64(fs.sessions),
				"trade_count":  float64(fs.count),
				"avg_after":    avgAfter,
				"baseline_avg": baseline,
				"delta":        delta,
			},
			CoachingRecommendations: a.recommendations(trigger, direction),
		})
	}
	return out, nil
}

func (a *CoachingResponseAnalyzer) recommendations(trigger, direction string) []string {
	if direction == "improvement" {
		return []string{
			fmt.Sprintf("Keep scheduling sessions around the %q trigger; results improve after them", trigger),
		}
	}
	return []string{
		fmt.Sprintf("Revisit how %q is being worked on; trades regress after those sessions", trigger),
		"Consider a cooling-off period after sessions covering this trigger",
	}
}
