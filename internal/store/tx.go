package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"trading-coach/internal/models"
)

// sqlitePatternTx implements PatternTx over a database/sql transaction.
type sqlitePatternTx struct {
	tx   *sql.Tx
	done bool
}

// BeginPatternSync opens the transactional scope for one synchronization
// pass. The caller must Commit or Rollback on every exit path.
func (s *SQLiteStore) BeginPatternSync(ctx context.Context) (PatternTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin pattern sync: %w", err)
	}
	return &sqlitePatternTx{tx: tx}, nil
}

// CreatePattern inserts a new pattern record.
func (t *sqlitePatternTx) CreatePattern(ctx context.Context, p *models.PsychologyPattern) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	triggers, _ := json.Marshal(p.TriggerConditions)
	tradingCtx, _ := json.Marshal(p.TradingContext)
	interventions, _ := json.Marshal(p.CoachingInterventions)

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO psychology_patterns (id, user_id, pattern_type, pattern_name, description, frequency, severity, impact, first_observed, last_observed, trigger_conditions, trading_context, interventions, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.UserID, p.PatternType, p.PatternName, p.Description, p.Frequency,
		p.Severity, p.ImpactOnPerformance, p.FirstObserved, p.LastObserved,
		string(triggers), string(tradingCtx), string(interventions), boolToInt(p.IsActive))
	if err != nil {
		return fmt.Errorf("failed to create pattern: %w", err)
	}
	return nil
}

// UpdatePattern refreshes a pattern record in place, replacing its metrics
// and full interventions log (the caller appends, never truncates).
func (t *sqlitePatternTx) UpdatePattern(ctx context.Context, p *models.PsychologyPattern) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	triggers, _ := json.Marshal(p.TriggerConditions)
	tradingCtx, _ := json.Marshal(p.TradingContext)
	interventions, _ := json.Marshal(p.CoachingInterventions)

	res, err := t.tx.ExecContext(ctx, `
		UPDATE psychology_patterns
		SET description = ?, frequency = ?, severity = ?, impact = ?, last_observed = ?,
		    trigger_conditions = ?, trading_context = ?, interventions = ?, is_active = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, p.Description, p.Frequency, p.Severity, p.ImpactOnPerformance, p.LastObserved,
		string(triggers), string(tradingCtx), string(interventions), boolToInt(p.IsActive), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update pattern: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("pattern %s not found", p.ID)
	}
	return nil
}

// DeactivatePattern soft-deactivates a pattern. The record and its
// interventions log stay intact.
func (t *sqlitePatternTx) DeactivatePattern(ctx context.Context, patternID string, when time.Time) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE psychology_patterns SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1
	`, when, patternID)
	if err != nil {
		return fmt.Errorf("failed to deactivate pattern: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("pattern %s not found or already inactive", patternID)
	}
	return nil
}

// RecordPass records the completion time of an analysis pass.
func (t *sqlitePatternTx) RecordPass(ctx context.Context, userID string, at time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO analysis_passes (user_id, last_pass, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET last_pass = excluded.last_pass, updated_at = CURRENT_TIMESTAMP
	`, userID, at)
	if err != nil {
		return fmt.Errorf("failed to record pass: %w", err)
	}
	return nil
}

// Commit commits the transaction.
func (t *sqlitePatternTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pattern sync: %w", err)
	}
	return nil
}

// Rollback rolls back the transaction. Safe to call after Commit.
func (t *sqlitePatternTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("failed to roll back pattern sync: %w", err)
	}
	return nil
}
