package scoring

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trading-coach/internal/config"
	"trading-coach/internal/models"
)

// Property 1: Evidence strength stays in [0,1]
//
// For any frequency, sample size, and impact (including negative and
// extreme values), the evidence score must land in the unit interval.

// Property 2: Scoring is deterministic and rank order is non-increasing
//
// Processing the same candidate slice twice yields identical output, and
// the ranked output's scores never increase from one position to the next.

func candidateGen() gopter.Gen {
	severities := gen.OneConstOf(
		models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical)
	types := gen.OneConstOf(
		models.PatternEmotionalTrigger, models.PatternRiskManagement,
		models.PatternDisciplineIssue, models.PatternMarketTiming,
		models.PatternPerformancePattern)

	return gen.Struct(reflect.TypeOf(models.CandidatePattern{}), map[string]gopter.Gen{
		"PatternType":         types,
		"PatternName":         gen.Identifier(),
		"Frequency":           gen.IntRange(0, 100),
		"SampleSize":          gen.IntRange(0, 500),
		"Severity":            severities,
		"ImpactOnPerformance": gen.Float64Range(-5000, 5000),
	})
}

func candidateSliceGen() gopter.Gen {
	return gen.SliceOf(candidateGen())
}

func TestEvidenceStrengthInUnitInterval(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	cfg := config.Default().Scoring
	properties := gopter.NewProperties(parameters)

	properties.Property("evidence strength is in [0,1]", prop.ForAll(
		func(frequency, sample int, impact float64) bool {
			score := EvidenceStrength(frequency, sample, impact, cfg)
			return score >= 0 && score <= 1
		},
		gen.IntRange(0, 10000),
		gen.IntRange(0, 10000),
		gen.Float64Range(-1e9, 1e9),
	))

	properties.TestingRun(t)
}

func TestProcessProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	cfg := config.Default().Scoring
	properties := gopter.NewProperties(parameters)

	properties.Property("process is deterministic", prop.ForAll(
		func(candidates []models.CandidatePattern) bool {
			a := make([]models.CandidatePattern, len(candidates))
			copy(a, candidates)
			b := make([]models.CandidatePattern, len(candidates))
			copy(b, candidates)

			return reflect.DeepEqual(Process(a, cfg), Process(b, cfg))
		},
		candidateSliceGen(),
	))

	properties.Property("ranked scores never increase", prop.ForAll(
		func(candidates []models.CandidatePattern) bool {
			out := Process(candidates, cfg)
			for i := 1; i < len(out); i++ {
				if out[i-1].RankingScore() < out[i].RankingScore() {
					return false
				}
			}
			return true
		},
		candidateSliceGen(),
	))

	properties.Property("no duplicate keys after dedupe", prop.ForAll(
		func(candidates []models.CandidatePattern) bool {
			out := Process(candidates, cfg)
			seen := make(map[models.PatternKey]bool, len(out))
			for _, c := range out {
				key := c.Key()
				if seen[key] {
					return false
				}
				seen[key] = true
			}
			return true
		},
		candidateSliceGen(),
	))

	properties.Property("every input key survives", prop.ForAll(
		func(candidates []models.CandidatePattern) bool {
			out := Process(candidates, cfg)
			kept := make(map[models.PatternKey]bool, len(out))
			for _, c := range out {
				kept[c.Key()] = true
			}
			for _, c := range candidates {
				if !kept[c.Key()] {
					return false
				}
			}
			return true
		},
		candidateSliceGen(),
	))

	properties.TestingRun(t)
}
