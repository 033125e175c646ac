package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-coach/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func sampleTrade(id, userID string) *models.Trade {
	exit := time.Date(2026, 8, 10, 11, 0, 0, 0, time.UTC)
	return &models.Trade{
		ID:               id,
		UserID:           userID,
		TradeType:        models.TradeTypeReal,
		Instrument:       "NQ",
		Direction:        models.DirectionLong,
		EntryPrice:       18500,
		ExitPrice:        fptr(18460),
		PnLDollars:       fptr(-80),
		PnLPoints:        fptr(-40),
		Status:           models.TradeStatusClosed,
		EmotionalState:   "anxious",
		DisciplineScore:  iptr(6),
		PlanAdherence:    fptr(0.8),
		RiskAmount:       fptr(100),
		StopLoss:         fptr(18450),
		StopMoved:        true,
		VolatilityRegime: "high",
		TradePlanID:      "plan-1",
		DeviationReasons: []string{"entered early", "oversized"},
		EntryTime:        time.Date(2026, 8, 10, 9, 30, 0, 0, time.UTC),
		ExitTime:         &exit,
	}
}

func samplePattern(id, userID, name string) *models.PsychologyPattern {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	return &models.PsychologyPattern{
		ID:                  id,
		UserID:              userID,
		PatternType:         models.PatternEmotionalTrigger,
		PatternName:         name,
		Description:         "test pattern",
		Frequency:           5,
		Severity:            models.SeverityMedium,
		ImpactOnPerformance: -400,
		FirstObserved:       now,
		LastObserved:        now,
		TriggerConditions:   []string{"emotional_state:anxious"},
		TradingContext:      models.TradingContext{"trade_count": 5},
		CoachingInterventions: []models.CoachingIntervention{
			{Date: now, Recommendations: []string{"pause before entry"}, EvidenceStrength: 0.58},
		},
		IsActive: true,
	}
}

func TestTradeRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	want := sampleTrade("t1", "u1")
	require.NoError(t, s.SaveTrade(ctx, want))

	got, err := s.GetTrades(ctx, TradeFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	tr := got[0]
	assert.Equal(t, want.ID, tr.ID)
	assert.Equal(t, want.TradeType, tr.TradeType)
	assert.Equal(t, want.Instrument, tr.Instrument)
	require.NotNil(t, tr.PnLDollars)
	assert.InDelta(t, -80.0, *tr.PnLDollars, 1e-9)
	require.NotNil(t, tr.DisciplineScore)
	assert.Equal(t, 6, *tr.DisciplineScore)
	assert.True(t, tr.StopMoved)
	assert.Equal(t, "anxious", tr.EmotionalState)
	assert.Equal(t, []string{"entered early", "oversized"}, tr.DeviationReasons)
	require.NotNil(t, tr.ExitTime)
	assert.True(t, want.ExitTime.Equal(*tr.ExitTime))
}

func TestTradeOptionalFieldsStayNil(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	open := &models.Trade{
		ID:         "t-open",
		UserID:     "u1",
		TradeType:  models.TradeTypeTraining,
		Instrument: "ES",
		Direction:  models.DirectionShort,
		EntryPrice: 5600,
		Status:     models.TradeStatusOpen,
		EntryTime:  time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveTrade(ctx, open))

	got, err := s.GetTrades(ctx, TradeFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	tr := got[0]
	assert.Nil(t, tr.ExitPrice)
	assert.Nil(t, tr.PnLDollars)
	assert.Nil(t, tr.StopLoss)
	assert.Nil(t, tr.DisciplineScore)
	assert.Nil(t, tr.ExitTime)
	assert.False(t, tr.StopMoved)
}

func TestGetTradesFilters(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	early := sampleTrade("t1", "u1")
	early.EntryTime = time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	late := sampleTrade("t2", "u1")
	late.EntryTime = time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	other := sampleTrade("t3", "u2")

	for _, tr := range []*models.Trade{early, late, other} {
		require.NoError(t, s.SaveTrade(ctx, tr))
	}

	got, err := s.GetTrades(ctx, TradeFilter{
		UserID:    "u1",
		StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t2", got[0].ID)

	got, err = s.GetTrades(ctx, TradeFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Ordered by entry time ascending.
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "t2", got[1].ID)
}

func TestSaveTradeRejectsInvalid(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	bad := sampleTrade("", "u1")
	assert.Error(t, s.SaveTrade(context.Background(), bad))
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	want := &models.CoachingSession{
		ID:                 "s1",
		UserID:             "u1",
		SessionType:        "review",
		EmotionalTriggers:  []string{"revenge-trading"},
		BehavioralPatterns: []string{"oversizing"},
		Recommendations:    []string{"take a break after two losses"},
		RelatedTradeIDs:    []string{"t1", "t2"},
		CreatedAt:          time.Date(2026, 8, 5, 18, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveSession(ctx, want))

	got, err := s.GetSessions(ctx, SessionFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want.EmotionalTriggers, got[0].EmotionalTriggers)
	assert.Equal(t, want.RelatedTradeIDs, got[0].RelatedTradeIDs)
}

func TestConversationRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	want := &models.Conversation{
		ID:           "c1",
		UserID:       "u1",
		Title:        "morning check-in",
		MessageCount: 12,
		CreatedAt:    time.Date(2026, 8, 5, 8, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 8, 5, 8, 30, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveConversation(ctx, want))

	got, err := s.GetConversations(ctx, ConversationFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 12, got[0].MessageCount)
}

func TestPlanRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	want := &models.TradePlan{
		ID:              "p1",
		UserID:          "u1",
		Instrument:      "ES",
		AdherenceScore:  0.85,
		Deviations:      []string{"moved target"},
		ExecutedTradeID: "t1",
		CreatedAt:       time.Date(2026, 8, 5, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SavePlan(ctx, want))

	got, err := s.GetPlan(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 0.85, got.AdherenceScore, 1e-9)
	assert.Equal(t, []string{"moved target"}, got.Deviations)

	missing, err := s.GetPlan(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPatternCreateAndRead(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	tx, err := s.BeginPatternSync(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreatePattern(ctx, samplePattern("pat1", "u1", "anxious Trading Pattern")))
	require.NoError(t, tx.Commit())

	got, err := s.GetActivePatterns(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	p := got[0]
	assert.Equal(t, "anxious Trading Pattern", p.PatternName)
	assert.True(t, p.IsActive)
	require.Len(t, p.CoachingInterventions, 1)
	assert.InDelta(t, 0.58, p.CoachingInterventions[0].EvidenceStrength, 1e-9)
	assert.InDelta(t, 5.0, p.TradingContext["trade_count"], 1e-9)
}

func TestPatternUniqueKeyEnforced(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	tx, err := s.BeginPatternSync(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreatePattern(ctx, samplePattern("pat1", "u1", "same name")))
	require.NoError(t, tx.Commit())

	tx, err = s.BeginPatternSync(ctx)
	require.NoError(t, err)
	err = tx.CreatePattern(ctx, samplePattern("pat2", "u1", "same name"))
	assert.Error(t, err)
	require.NoError(t, tx.Rollback())

	// Same name for a different user is fine.
	tx, err = s.BeginPatternSync(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreatePattern(ctx, samplePattern("pat3", "u2", "same name")))
	require.NoError(t, tx.Commit())
}

func TestPatternDeactivateAndFilter(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	when := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	tx, err := s.BeginPatternSync(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreatePattern(ctx, samplePattern("pat1", "u1", "stale")))
	require.NoError(t, tx.CreatePattern(ctx, samplePattern("pat2", "u1", "fresh")))
	require.NoError(t, tx.Commit())

	tx, err = s.BeginPatternSync(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.DeactivatePattern(ctx, "pat1", when))
	require.NoError(t, tx.Commit())

	active, err := s.GetActivePatterns(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "fresh", active[0].PatternName)

	all, err := s.GetPatterns(ctx, PatternFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Double-deactivation reports an error.
	tx, err = s.BeginPatternSync(ctx)
	require.NoError(t, err)
	assert.Error(t, tx.DeactivatePattern(ctx, "pat1", when))
	require.NoError(t, tx.Rollback())
}

func TestPatternRollbackDiscardsWrites(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	tx, err := s.BeginPatternSync(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreatePattern(ctx, samplePattern("pat1", "u1", "doomed")))
	require.NoError(t, tx.Rollback())

	got, err := s.GetPatterns(ctx, PatternFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdatePatternMissingRecord(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	tx, err := s.BeginPatternSync(ctx)
	require.NoError(t, err)
	err = tx.UpdatePattern(ctx, samplePattern("ghost", "u1", "ghost"))
	assert.Error(t, err)
	require.NoError(t, tx.Rollback())
}

func TestRecordPassUpsert(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	first := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	for _, at := range []time.Time{first, second} {
		tx, err := s.BeginPatternSync(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.RecordPass(ctx, "u1", at))
		require.NoError(t, tx.Commit())
	}

	got, err := s.GetLastPass(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, second.Equal(got))

	none, err := s.GetLastPass(ctx, "never-analyzed")
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}
