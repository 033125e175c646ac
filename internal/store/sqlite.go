// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"trading-coach/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trades table
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		trade_type TEXT NOT NULL,
		instrument TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL,
		pnl_dollars REAL,
		pnl_points REAL,
		status TEXT NOT NULL,
		emotional_state TEXT,
		discipline_score INTEGER,
		plan_adherence REAL,
		risk_amount REAL,
		stop_loss REAL,
		stop_moved INTEGER DEFAULT 0,
		volatility_regime TEXT,
		trade_plan_id TEXT,
		deviation_reasons TEXT,
		entry_time DATETIME NOT NULL,
		exit_time DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Coaching sessions table
	CREATE TABLE IF NOT EXISTS coaching_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		session_type TEXT,
		emotional_triggers TEXT,
		behavioral_patterns TEXT,
		recommendations TEXT,
		related_trade_ids TEXT,
		created_at DATETIME NOT NULL
	);

	-- Conversations table (metadata only)
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT,
		message_count INTEGER DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	-- Trade plans table
	CREATE TABLE IF NOT EXISTS trade_plans (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		instrument TEXT,
		adherence_score REAL,
		deviations TEXT,
		executed_trade_id TEXT,
		created_at DATETIME NOT NULL
	);

	-- Psychology patterns table. Patterns are soft-deactivated, never
	-- deleted; the interventions log column only grows.
	CREATE TABLE IF NOT EXISTS psychology_patterns (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		pattern_type TEXT NOT NULL,
		pattern_name TEXT NOT NULL,
		description TEXT,
		frequency INTEGER NOT NULL,
		severity TEXT NOT NULL,
		impact REAL NOT NULL,
		first_observed DATETIME NOT NULL,
		last_observed DATETIME NOT NULL,
		trigger_conditions TEXT,
		trading_context TEXT,
		interventions TEXT,
		is_active INTEGER DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, pattern_type, pattern_name)
	);

	-- Analysis pass bookkeeping
	CREATE TABLE IF NOT EXISTS analysis_passes (
		user_id TEXT PRIMARY KEY,
		last_pass DATETIME NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trades_user_entry ON trades(user_id, entry_time);
	CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status);
	CREATE INDEX IF NOT EXISTS idx_sessions_user_created ON coaching_sessions(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, updated_at);
	CREATE INDEX IF NOT EXISTS idx_plans_user ON trade_plans(user_id);
	CREATE INDEX IF NOT EXISTS idx_patterns_user_active ON psychology_patterns(user_id, is_active);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Trades
// ============================================================================

// SaveTrade saves a trade to the database.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.Trade) error {
	if err := trade.Validate(); err != nil {
		return fmt.Errorf("invalid trade: %w", err)
	}
	reasons, _ := json.Marshal(trade.DeviationReasons)

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trades (id, user_id, trade_type, instrument, direction, entry_price, exit_price, pnl_dollars, pnl_points, status, emotional_state, discipline_score, plan_adherence, risk_amount, stop_loss, stop_moved, volatility_regime, trade_plan_id, deviation_reasons, entry_time, exit_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, trade.UserID, trade.TradeType, trade.Instrument, trade.Direction,
		trade.EntryPrice, trade.ExitPrice, trade.PnLDollars, trade.PnLPoints, trade.Status,
		trade.EmotionalState, trade.DisciplineScore, trade.PlanAdherence, trade.RiskAmount,
		trade.StopLoss, boolToInt(trade.StopMoved), trade.VolatilityRegime, trade.TradePlanID,
		string(reasons), trade.EntryTime, trade.ExitTime)
	if err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}
	return nil
}

// GetTrades retrieves trades matching the filter, ordered by entry time.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := `SELECT id, user_id, trade_type, instrument, direction, entry_price, exit_price, pnl_dollars, pnl_points, status, emotional_state, discipline_score, plan_adherence, risk_amount, stop_loss, stop_moved, volatility_regime, trade_plan_id, deviation_reasons, entry_time, exit_time FROM trades WHERE 1=1`
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if !filter.StartDate.IsZero() {
		query += " AND entry_time >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND entry_time <= ?"
		args = append(args, filter.EndDate)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.TradeType != "" {
		query += " AND trade_type = ?"
		args = append(args, filter.TradeType)
	}

	query += " ORDER BY entry_time ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *t)
	}

	return trades, rows.Err()
}

func scanTrade(rows *sql.Rows) (*models.Trade, error) {
	var t models.Trade
	var exitPrice, pnlDollars, pnlPoints, planAdherence, riskAmount, stopLoss sql.NullFloat64
	var disciplineScore sql.NullInt64
	var emotionalState, volatilityRegime, tradePlanID, reasonsJSON sql.NullString
	var exitTime sql.NullTime
	var stopMoved int

	err := rows.Scan(&t.ID, &t.UserID, &t.TradeType, &t.Instrument, &t.Direction,
		&t.EntryPrice, &exitPrice, &pnlDollars, &pnlPoints, &t.Status,
		&emotionalState, &disciplineScore, &planAdherence, &riskAmount,
		&stopLoss, &stopMoved, &volatilityRegime, &tradePlanID,
		&reasonsJSON, &t.EntryTime, &exitTime)
	if err != nil {
		return nil, fmt.Errorf("failed to scan trade: %w", err)
	}

	t.ExitPrice = nullFloat(exitPrice)
	t.PnLDollars = nullFloat(pnlDollars)
	t.PnLPoints = nullFloat(pnlPoints)
	t.PlanAdherence = nullFloat(planAdherence)
	t.RiskAmount = nullFloat(riskAmount)
	t.StopLoss = nullFloat(stopLoss)
	if disciplineScore.Valid {
		v := int(disciplineScore.Int64)
		t.DisciplineScore = &v
	}
	t.EmotionalState = emotionalState.String
	t.VolatilityRegime = volatilityRegime.String
	t.TradePlanID = tradePlanID.String
	t.StopMoved = stopMoved == 1
	if exitTime.Valid {
		et := exitTime.Time
		t.ExitTime = &et
	}
	if reasonsJSON.Valid && reasonsJSON.String != "" {
		json.Unmarshal([]byte(reasonsJSON.String), &t.DeviationReasons)
	}
	return &t, nil
}

// ============================================================================
// Coaching sessions
// ============================================================================

// SaveSession saves a coaching session to the database.
func (s *SQLiteStore) SaveSession(ctx context.Context, session *models.CoachingSession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}
	triggers, _ := json.Marshal(session.EmotionalTriggers)
	behaviors, _ := json.Marshal(session.BehavioralPatterns)
	recs, _ := json.Marshal(session.Recommendations)
	tradeIDs, _ := json.Marshal(session.RelatedTradeIDs)

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO coaching_sessions (id, user_id, session_type, emotional_triggers, behavioral_patterns, recommendations, related_trade_ids, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, session.ID, session.UserID, session.SessionType, string(triggers), string(behaviors),
		string(recs), string(tradeIDs), session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSessions retrieves coaching sessions matching the filter.
func (s *SQLiteStore) GetSessions(ctx context.Context, filter SessionFilter) ([]models.CoachingSession, error) {
	query := `SELECT id, user_id, session_type, emotional_triggers, behavioral_patterns, recommendations, related_trade_ids, created_at FROM coaching_sessions WHERE 1=1`
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if !filter.StartDate.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY created_at ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.CoachingSession
	for rows.Next() {
		var sess models.CoachingSession
		var triggers, behaviors, recs, tradeIDs sql.NullString

		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.SessionType, &triggers, &behaviors, &recs, &tradeIDs, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		unmarshalStrings(triggers, &sess.EmotionalTriggers)
		unmarshalStrings(behaviors, &sess.BehavioralPatterns)
		unmarshalStrings(recs, &sess.Recommendations)
		unmarshalStrings(tradeIDs, &sess.RelatedTradeIDs)
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}

// ============================================================================
// Conversations
// ============================================================================

// SaveConversation saves conversation metadata to the database.
func (s *SQLiteStore) SaveConversation(ctx context.Context, conv *models.Conversation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO conversations (id, user_id, title, message_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, conv.ID, conv.UserID, conv.Title, conv.MessageCount, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// GetConversations retrieves conversations matching the filter.
func (s *SQLiteStore) GetConversations(ctx context.Context, filter ConversationFilter) ([]models.Conversation, error) {
	query := `SELECT id, user_id, title, message_count, created_at, updated_at FROM conversations WHERE 1=1`
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if !filter.StartDate.IsZero() {
		query += " AND updated_at >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND updated_at <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY updated_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.MessageCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		convs = append(convs, c)
	}

	return convs, rows.Err()
}

// ============================================================================
// Trade plans
// ============================================================================

// SavePlan saves a trade plan to the database.
func (s *SQLiteStore) SavePlan(ctx context.Context, plan *models.TradePlan) error {
	deviations, _ := json.Marshal(plan.Deviations)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trade_plans (id, user_id, instrument, adherence_score, deviations, executed_trade_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, plan.ID, plan.UserID, plan.Instrument, plan.AdherenceScore, string(deviations), plan.ExecutedTradeID, plan.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// GetPlan retrieves a trade plan by ID.
func (s *SQLiteStore) GetPlan(ctx context.Context, planID string) (*models.TradePlan, error) {
	var p models.TradePlan
	var deviations sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, instrument, adherence_score, deviations, executed_trade_id, created_at
		FROM trade_plans WHERE id = ?
	`, planID).Scan(&p.ID, &p.UserID, &p.Instrument, &p.AdherenceScore, &deviations, &p.ExecutedTradeID, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	unmarshalStrings(deviations, &p.Deviations)
	return &p, nil
}

// ============================================================================
// Psychology patterns
// ============================================================================

const patternColumns = `id, user_id, pattern_type, pattern_name, description, frequency, severity, impact, first_observed, last_observed, trigger_conditions, trading_context, interventions, is_active`

// GetActivePatterns retrieves all active patterns for a user.
func (s *SQLiteStore) GetActivePatterns(ctx context.Context, userID string) ([]models.PsychologyPattern, error) {
	return s.GetPatterns(ctx, PatternFilter{UserID: userID, ActiveOnly: true})
}

// GetPatterns retrieves patterns matching the filter.
func (s *SQLiteStore) GetPatterns(ctx context.Context, filter PatternFilter) ([]models.PsychologyPattern, error) {
	query := "SELECT " + patternColumns + " FROM psychology_patterns WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.ActiveOnly {
		query += " AND is_active = 1"
	}
	if len(filter.Types) > 0 {
		query += " AND pattern_type IN (?" + repeat(",?", len(filter.Types)-1) + ")"
		for _, pt := range filter.Types {
			args = append(args, string(pt))
		}
	}

	query += " ORDER BY last_observed DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	var patterns []models.PsychologyPattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, *p)
	}

	return patterns, rows.Err()
}

func scanPattern(rows *sql.Rows) (*models.PsychologyPattern, error) {
	var p models.PsychologyPattern
	var triggers, tradingCtx, interventions sql.NullString
	var isActive int

	err := rows.Scan(&p.ID, &p.UserID, &p.PatternType, &p.PatternName, &p.Description,
		&p.Frequency, &p.Severity, &p.ImpactOnPerformance, &p.FirstObserved, &p.LastObserved,
		&triggers, &tradingCtx, &interventions, &isActive)
	if err != nil {
		return nil, fmt.Errorf("failed to scan pattern: %w", err)
	}

	unmarshalStrings(triggers, &p.TriggerConditions)
	if tradingCtx.Valid && tradingCtx.String != "" {
		json.Unmarshal([]byte(tradingCtx.String), &p.TradingContext)
	}
	if interventions.Valid && interventions.String != "" {
		json.Unmarshal([]byte(interventions.String), &p.CoachingInterventions)
	}
	p.IsActive = isActive == 1
	return &p, nil
}

// GetLastPass returns the time of the last completed analysis pass for a user.
func (s *SQLiteStore) GetLastPass(ctx context.Context, userID string) (time.Time, error) {
	var t sql.NullTime
	err := s.db.QueryRowContext(ctx, `SELECT last_pass FROM analysis_passes WHERE user_id = ?`, userID).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last pass: %w", err)
	}
	if !t.Valid {
		return time.Time{}, nil
	}
	return t.Time, nil
}

// ============================================================================
// Helpers
// ============================================================================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func unmarshalStrings(v sql.NullString, target *[]string) {
	if v.Valid && v.String != "" {
		json.Unmarshal([]byte(v.String), target)
	}
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
