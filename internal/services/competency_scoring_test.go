package services

import (
	"encoding/json"
	"testing"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) CompetencyScoringEngine {
	t.Helper()
	engine, err := NewCompetencyScoringEngine()
	require.NoError(t, err)
	return engine
}

func uniformResponses(count int, value interface{}) map[int]interface{} {
	responses := make(map[int]interface{}, count)
	for i := 1; i <= count; i++ {
		responses[i] = value
	}
	return responses
}

func TestLoadInstruments_Embedded(t *testing.T) {
	instruments, err := LoadInstruments(defaultInstruments)
	require.NoError(t, err)

	soft := instruments[InstrumentSoftSkills]
	require.NotNil(t, soft)
	assert.Len(t, soft.Competencies, 8)
	total := 0
	for _, c := range soft.Competencies {
		assert.Len(t, c.Questions, 20, c.Name)
		total += len(c.Questions)
	}
	assert.Equal(t, 160, total)

	mi := instruments[InstrumentMultipleIntelligences]
	require.NotNil(t, mi)
	assert.Len(t, mi.Competencies, 8)
	for _, c := range mi.Competencies {
		assert.Len(t, c.Questions, 5, c.Name)
	}
}

func TestLoadInstruments_RejectsBrokenTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "gap between ranges",
			yaml: `
instruments:
  - name: x
    scheme: count_max
    max_rating: 5
    points_per_answer: 5
    competencies:
      - name: A
        questions: [1, 2]
        levels:
          - {min: 0, max: 0, label: Low}
          - {min: 2, max: 2, label: High}
`,
		},
		{
			name: "overlapping ranges",
			yaml: `
instruments:
  - name: x
    scheme: count_max
    max_rating: 5
    points_per_answer: 5
    competencies:
      - name: A
        questions: [1, 2]
        levels:
          - {min: 0, max: 1, label: Low}
          - {min: 1, max: 2, label: High}
`,
		},
		{
			name: "domain not covered",
			yaml: `
instruments:
  - name: x
    scheme: count_max
    max_rating: 5
    points_per_answer: 5
    competencies:
      - name: A
        questions: [1, 2, 3]
        levels:
          - {min: 0, max: 1, label: Low}
          - {min: 2, max: 2, label: High}
`,
		},
		{
			name: "question assigned twice",
			yaml: `
instruments:
  - name: x
    scheme: count_max
    max_rating: 5
    points_per_answer: 5
    competencies:
      - name: A
        questions: [1]
        levels: [{min: 0, max: 1, label: Any}]
      - name: B
        questions: [1]
        levels: [{min: 0, max: 1, label: Any}]
`,
		},
		{
			name: "sum without overall table",
			yaml: `
instruments:
  - name: x
    scheme: sum
    min_rating: 1
    max_rating: 5
    competencies:
      - name: A
        questions: [1]
        levels: [{min: 0, max: 5, label: Any}]
`,
		},
		{
			name: "unknown scheme",
			yaml: `
instruments:
  - name: x
    scheme: median
    competencies:
      - name: A
        questions: [1]
        levels: [{min: 0, max: 1, label: Any}]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadInstruments([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestScore_UnknownInstrument(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Score("big-five", nil)

	assert.True(t, apperror.IsValidation(err))
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"available instruments: multiple-intelligences, soft-skills"}, appErr.Details)
}

func TestInstruments_Sorted(t *testing.T) {
	engine := newTestEngine(t)

	assert.Equal(t, []string{InstrumentMultipleIntelligences, InstrumentSoftSkills}, engine.Instruments())
}

func TestScore_SoftSkills(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("all fives", func(t *testing.T) {
		result, err := engine.Score(InstrumentSoftSkills, uniformResponses(160, 5))
		require.NoError(t, err)

		assert.Equal(t, 800, result.Total)
		assert.Equal(t, "Very High", result.OverallLevel)
		for _, name := range result.Order {
			assert.Equal(t, 100, result.PerCompetency[name].Score)
			assert.Equal(t, "Very High", result.PerCompetency[name].Level)
		}
	})

	t.Run("all ones", func(t *testing.T) {
		result, err := engine.Score(InstrumentSoftSkills, uniformResponses(160, 1))
		require.NoError(t, err)

		assert.Equal(t, 160, result.Total)
		assert.Equal(t, "Very Low", result.OverallLevel)
		assert.Equal(t, models.CompetencyResult{Score: 20, Level: "Very Low"}, result.PerCompetency["Communication"])
	})

	t.Run("no answers falls back to lowest overall level", func(t *testing.T) {
		result, err := engine.Score(InstrumentSoftSkills, map[int]interface{}{})
		require.NoError(t, err)

		assert.Equal(t, 0, result.Total)
		assert.Equal(t, "Very Low", result.OverallLevel)
		assert.Len(t, result.PerCompetency, 8)
	})

	t.Run("order follows declaration", func(t *testing.T) {
		result, err := engine.Score(InstrumentSoftSkills, nil)
		require.NoError(t, err)

		assert.Equal(t, "Communication", result.Order[0])
		assert.Equal(t, "Critical Thinking", result.Order[7])
	})

	t.Run("strings numbers and junk", func(t *testing.T) {
		// Communication owns questions 1, 9, 17, ...
		responses := map[int]interface{}{
			1:  "4",
			9:  float64(3),
			17: json.Number("5"),
			25: "often",
			33: 9,
			41: 2.5,
		}
		result, err := engine.Score(InstrumentSoftSkills, responses)
		require.NoError(t, err)

		assert.Equal(t, 12, result.PerCompetency["Communication"].Score)
		assert.Equal(t, 12, result.Total)
	})
}

func TestScore_SoftSkillsBoundaries(t *testing.T) {
	engine := newTestEngine(t)
	communication := []int{1, 9, 17, 25, 33, 41, 49, 57, 65, 73, 81, 89, 97, 105, 113, 121, 129, 137, 145, 153}

	// answers builds a Communication sum of exactly target using ratings 1-5.
	answers := func(target int) map[int]interface{} {
		responses := make(map[int]interface{})
		for _, q := range communication {
			if target <= 0 {
				break
			}
			v := 5
			if target < 5 {
				v = target
			}
			responses[q] = v
			target -= v
		}
		return responses
	}

	tests := []struct {
		sum   int
		level string
	}{
		{0, "Very Low"},
		{39, "Very Low"},
		{40, "Low"},
		{54, "Low"},
		{55, "Medium"},
		{69, "Medium"},
		{70, "High"},
		{84, "High"},
		{85, "Very High"},
		{100, "Very High"},
	}

	for _, tt := range tests {
		result, err := engine.Score(InstrumentSoftSkills, answers(tt.sum))
		require.NoError(t, err)

		got := result.PerCompetency["Communication"]
		assert.Equal(t, tt.sum, got.Score)
		assert.Equal(t, tt.level, got.Level, "sum %d", tt.sum)
	}
}

func TestScore_SoftSkillsOverallBands(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		extra int
		level string
	}{
		{127, "Very Low"},  // 287
		{128, "Low"},       // 288
		{383, "Medium"},    // 543
		{384, "High"},      // 544
		{512, "Very High"}, // 672
	}

	for _, tt := range tests {
		responses := uniformResponses(160, 1)
		remaining := tt.extra
		for q := 1; q <= 160 && remaining > 0; q++ {
			add := 4
			if remaining < 4 {
				add = remaining
			}
			responses[q] = 1 + add
			remaining -= add
		}

		result, err := engine.Score(InstrumentSoftSkills, responses)
		require.NoError(t, err)
		assert.Equal(t, 160+tt.extra, result.Total)
		assert.Equal(t, tt.level, result.OverallLevel, "total %d", result.Total)
	}
}

func TestScore_MultipleIntelligences(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("counts only the maximum rating", func(t *testing.T) {
		// Linguistic owns 1, 9, 17, 25, 33.
		responses := map[int]interface{}{1: 5, 9: "5", 17: 4, 25: "5", 33: "five"}
		result, err := engine.Score(InstrumentMultipleIntelligences, responses)
		require.NoError(t, err)

		linguistic := result.PerCompetency["Linguistic"]
		assert.Equal(t, 15, linguistic.Score)
		assert.Equal(t, "Medium", linguistic.Level)
		assert.Equal(t, 15, result.Total)
		assert.Equal(t, "Medium", result.OverallLevel)
	})

	t.Run("band boundaries", func(t *testing.T) {
		tests := []struct {
			count int
			level string
		}{
			{0, "Low"}, {1, "Low"}, {2, "Medium"}, {3, "Medium"}, {4, "High"}, {5, "High"},
		}
		for _, tt := range tests {
			responses := make(map[int]interface{})
			for k := 0; k < tt.count; k++ {
				responses[2+8*k] = 5 // Logical-Mathematical
			}
			result, err := engine.Score(InstrumentMultipleIntelligences, responses)
			require.NoError(t, err)

			got := result.PerCompetency["Logical-Mathematical"]
			assert.Equal(t, tt.count*5, got.Score)
			assert.Equal(t, tt.level, got.Level, "count %d", tt.count)
		}
	})

	t.Run("all fives", func(t *testing.T) {
		result, err := engine.Score(InstrumentMultipleIntelligences, uniformResponses(40, 5))
		require.NoError(t, err)

		assert.Equal(t, 200, result.Total)
		assert.Equal(t, "High", result.OverallLevel)
	})
}

func TestScore_Deterministic(t *testing.T) {
	engine := newTestEngine(t)
	responses := map[int]interface{}{1: 3, 2: "5", 3: 4, 80: 2, 159: "1"}

	first, err := engine.Score(InstrumentSoftSkills, responses)
	require.NoError(t, err)
	second, err := engine.Score(InstrumentSoftSkills, responses)
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.Equal(t, string(a), string(b))
}
