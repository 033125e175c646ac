package engine

import (
	"context"
	"time"

	apperrors "trading-coach/internal/errors"
	"trading-coach/internal/logging"
	"trading-coach/internal/models"
	"trading-coach/internal/store"
	"trading-coach/pkg/id"
)

// syncCounts reports what one synchronization pass did to the store.
type syncCounts struct {
	created     int
	updated     int
	deactivated int
}

// synchronize reconciles the ranked candidates against the persisted
// pattern records inside one transaction. A candidate matching an existing
// (patternType, patternName) refreshes the record and appends exactly one
// intervention entry; anything else creates a new record. Active patterns
// absent from the candidate set and last observed beyond the retention
// window are deactivated. Any persistence error rolls the whole pass back.
func (e *Engine) synchronize(ctx context.Context, userID string, ranked []models.CandidatePattern, now time.Time) (syncCounts, error) {
	var counts syncCounts

	// No mid-transaction cancellation: honor the context before the
	// transaction starts, then run to completion or roll back.
	if err := ctx.Err(); err != nil {
		return counts, err
	}

	// Include inactive records: a re-identified pattern reactivates through
	// the normal update path, and the unique key forbids a second insert.
	existing, err := e.store.GetPatterns(ctx, store.PatternFilter{UserID: userID})
	if err != nil {
		return counts, apperrors.NewPersistenceError("sync.read", userID, err)
	}
	byKey := make(map[models.PatternKey]*models.PsychologyPattern, len(existing))
	for i := range existing {
		p := &existing[i]
		byKey[p.Key()] = p
	}

	tx, err := e.store.BeginPatternSync(ctx)
	if err != nil {
		return counts, apperrors.NewPersistenceError("sync.begin", userID, err)
	}
	defer tx.Rollback()

	candidateKeys := make(map[models.PatternKey]bool, len(ranked))
	logger := logging.WithUser(e.logger, userID)

	for _, c := range ranked {
		candidateKeys[c.Key()] = true

		entry := models.CoachingIntervention{
			Date:             now,
			Recommendations:  c.CoachingRecommendations,
			EvidenceStrength: c.EvidenceStrength,
		}

		if p, ok := byKey[c.Key()]; ok {
			p.Description = c.Description
			p.Frequency = c.Frequency
			p.Severity = c.Severity
			p.ImpactOnPerformance = c.ImpactOnPerformance
			p.LastObserved = now
			p.TriggerConditions = c.TriggerConditions
			p.TradingContext = c.TradingContext
			p.CoachingInterventions = append(p.CoachingInterventions, entry)
			p.IsActive = true

			if err := tx.UpdatePattern(ctx, p); err != nil {
				return syncCounts{}, apperrors.NewPersistenceError("sync.update", userID, err)
			}
			counts.updated++
			logging.LogPatternIdentified(logger, userID, string(p.PatternType), p.PatternName, c.EvidenceStrength, false)
			continue
		}

		p := &models.PsychologyPattern{
			ID:                    id.New(),
			UserID:                userID,
			PatternType:           c.PatternType,
			PatternName:           c.PatternName,
			Description:           c.Description,
			Frequency:             c.Frequency,
			Severity:              c.Severity,
			ImpactOnPerformance:   c.ImpactOnPerformance,
			FirstObserved:         now,
			LastObserved:          now,
			TriggerConditions:     c.TriggerConditions,
			TradingContext:        c.TradingContext,
			CoachingInterventions: []models.CoachingIntervention{entry},
			IsActive:              true,
		}
		if err := tx.CreatePattern(ctx, p); err != nil {
			return syncCounts{}, apperrors.NewPersistenceError("sync.create", userID, err)
		}
		counts.created++
		logging.LogPatternIdentified(logger, userID, string(p.PatternType), p.PatternName, c.EvidenceStrength, true)
	}

	// Deactivate stale actives that this pass did not reproduce.
	cutoff := now.AddDate(0, 0, -e.cfg.Analysis.RetentionDays)
	for i := range existing {
		p := &existing[i]
		if !p.IsActive || candidateKeys[p.Key()] {
			continue
		}
		if !p.LastObserved.Before(cutoff) {
			continue
		}
		if err := tx.DeactivatePattern(ctx, p.ID, now); err != nil {
			return syncCounts{}, apperrors.NewPersistenceError("sync.deactivate", userID, err)
		}
		counts.deactivated++
		logging.LogPatternDeactivated(logger, userID, string(p.PatternType), p.PatternName, p.LastObserved)
	}

	if err := tx.RecordPass(ctx, userID, now); err != nil {
		return syncCounts{}, apperrors.NewPersistenceError("sync.record_pass", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return syncCounts{}, apperrors.NewPersistenceError("sync.commit", userID, err)
	}
	return counts, nil
}
