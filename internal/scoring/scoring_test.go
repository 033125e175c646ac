package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-coach/internal/config"
	"trading-coach/internal/models"
)

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		FrequencyCeiling: 10,
		SampleCeiling:    20,
		ImpactCeiling:    100,
	}
}

func TestEvidenceStrength(t *testing.T) {
	t.Parallel()

	cfg := testScoringConfig()

	tests := []struct {
		name      string
		frequency int
		sample    int
		impact    float64
		want      float64
	}{
		{"all zero", 0, 0, 0, 0},
		{"all at ceiling", 10, 20, 100, 1},
		{"all beyond ceiling clamps", 50, 200, 5000, 1},
		{"midpoints", 5, 10, 50, 0.5},
		{"negative impact uses magnitude", 5, 10, -50, 0.5},
		{"scenario b", 5, 5, -400, (0.5 + 0.25 + 1.0) / 3},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := EvidenceStrength(tt.frequency, tt.sample, tt.impact, cfg)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDedupeFirstWins(t *testing.T) {
	t.Parallel()

	first := models.CandidatePattern{
		PatternType: models.PatternEmotionalTrigger,
		PatternName: "anxious Trading Pattern",
		Description: "kept",
	}
	duplicate := first
	duplicate.Description = "dropped"
	other := models.CandidatePattern{
		PatternType: models.PatternRiskManagement,
		PatternName: "Trading Without Stop Loss",
	}

	out := Dedupe([]models.CandidatePattern{first, other, duplicate})

	require.Len(t, out, 2)
	assert.Equal(t, "kept", out[0].Description)
	assert.Equal(t, models.PatternRiskManagement, out[1].PatternType)
}

func TestDedupeSameNameDifferentTypeKept(t *testing.T) {
	t.Parallel()

	a := models.CandidatePattern{PatternType: models.PatternMarketTiming, PatternName: "x"}
	b := models.CandidatePattern{PatternType: models.PatternPerformancePattern, PatternName: "x"}

	out := Dedupe([]models.CandidatePattern{a, b})
	assert.Len(t, out, 2)
}

func TestRankOrdersByScore(t *testing.T) {
	t.Parallel()

	low := models.CandidatePattern{
		PatternName: "low", Severity: models.SeverityLow,
		EvidenceStrength: 0.5, ImpactOnPerformance: -100,
	} // 1 * 0.5 * 100 = 50
	critical := models.CandidatePattern{
		PatternName: "critical", Severity: models.SeverityCritical,
		EvidenceStrength: 0.5, ImpactOnPerformance: -100,
	} // 4 * 0.5 * 100 = 200
	medium := models.CandidatePattern{
		PatternName: "medium", Severity: models.SeverityMedium,
		EvidenceStrength: 0.9, ImpactOnPerformance: -80,
	} // 2 * 0.9 * 80 = 144

	out := Rank([]models.CandidatePattern{low, critical, medium})

	require.Len(t, out, 3)
	assert.Equal(t, "critical", out[0].PatternName)
	assert.Equal(t, "medium", out[1].PatternName)
	assert.Equal(t, "low", out[2].PatternName)
}

func TestRankStableTieBreak(t *testing.T) {
	t.Parallel()

	// Identical ranking scores: emission order decides.
	first := models.CandidatePattern{
		PatternName: "emitted-first", Severity: models.SeverityHigh,
		EvidenceStrength: 0.6, ImpactOnPerformance: -150,
	}
	second := models.CandidatePattern{
		PatternName: "emitted-second", Severity: models.SeverityHigh,
		EvidenceStrength: 0.6, ImpactOnPerformance: 150,
	}
	require.InDelta(t, first.RankingScore(), second.RankingScore(), 1e-12)

	out := Rank([]models.CandidatePattern{first, second})
	assert.Equal(t, "emitted-first", out[0].PatternName)
	assert.Equal(t, "emitted-second", out[1].PatternName)

	out = Rank([]models.CandidatePattern{second, first})
	assert.Equal(t, "emitted-second", out[0].PatternName)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := []models.CandidatePattern{
		{PatternName: "a", Severity: models.SeverityLow, EvidenceStrength: 0.1, ImpactOnPerformance: 1},
		{PatternName: "b", Severity: models.SeverityCritical, EvidenceStrength: 1, ImpactOnPerformance: 500},
	}

	_ = Rank(in)
	assert.Equal(t, "a", in[0].PatternName)
	assert.Equal(t, "b", in[1].PatternName)
}

func TestProcessFillsEvidenceThenRanks(t *testing.T) {
	t.Parallel()

	candidates := []models.CandidatePattern{
		{
			PatternType: models.PatternEmotionalTrigger, PatternName: "weak",
			Frequency: 2, SampleSize: 2, Severity: models.SeverityLow, ImpactOnPerformance: -20,
		},
		{
			PatternType: models.PatternRiskManagement, PatternName: "strong",
			Frequency: 10, SampleSize: 20, Severity: models.SeverityCritical, ImpactOnPerformance: -400,
		},
	}

	out := Process(candidates, testScoringConfig())

	require.Len(t, out, 2)
	assert.Equal(t, "strong", out[0].PatternName)
	assert.InDelta(t, 1.0, out[0].EvidenceStrength, 1e-9)
	for _, c := range out {
		assert.GreaterOrEqual(t, c.EvidenceStrength, 0.0)
		assert.LessOrEqual(t, c.EvidenceStrength, 1.0)
	}
}
