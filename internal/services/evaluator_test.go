package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/admission-tracker/internal/logger"
	"alfredoptarigan/admission-tracker/internal/models"
)

func newTestEvaluator(t *testing.T, gemini GeminiService, qdrant QdrantService) SemanticEvaluator {
	t.Helper()
	evaluator, err := NewSemanticEvaluator(gemini, qdrant, 2, logger.NewTestLogger(t))
	require.NoError(t, err)
	return evaluator
}

func TestEvaluateAnswers_ParsesFencedResponse(t *testing.T) {
	gemini := new(MockGeminiService)
	gemini.On("GenerateJSONWithRetry", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "No rubric available") && strings.Contains(p, "QUESTION 2:")
	}), mock.Anything, 2).Return("```json\n{\"evaluations\":[{\"score\":90,\"explanation\":\"strong\"},{\"score\":40,\"explanation\":\"vague\"}]}\n```", nil)

	got, err := newTestEvaluator(t, gemini, nil).EvaluateAnswers(context.Background(),
		[]string{"q1", "q2"}, []string{"a1", "a2"})

	require.NoError(t, err)
	assert.Equal(t, []models.AnswerEvaluation{
		{Score: 90, Explanation: "strong"},
		{Score: 40, Explanation: "vague"},
	}, got)
	gemini.AssertNotCalled(t, "GenerateEmbedding", mock.Anything, mock.Anything)
}

func TestEvaluateAnswers_UsesRubricContext(t *testing.T) {
	gemini := new(MockGeminiService)
	qdrant := new(MockQdrantService)
	embedding := []float32{0.1, 0.2}

	gemini.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(embedding, nil)
	qdrant.On("SearchSimilar", mock.Anything, embedding, RubricDocType, rubricPassages).
		Return([]SearchResult{{Score: 0.9, Text: "Reward concrete examples."}}, nil)
	gemini.On("GenerateJSONWithRetry", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Reward concrete examples.")
	}), mock.Anything, mock.Anything).Return(`{"evaluations":[{"score":75}]}`, nil)

	got, err := newTestEvaluator(t, gemini, qdrant).EvaluateAnswers(context.Background(), []string{"q"}, []string{"a"})

	require.NoError(t, err)
	assert.Equal(t, 75, got[0].Score)
	qdrant.AssertExpectations(t)
}

func TestEvaluateAnswers_RubricFailureIsNotFatal(t *testing.T) {
	gemini := new(MockGeminiService)
	qdrant := new(MockQdrantService)

	gemini.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(nil, errors.New("embedding quota"))
	gemini.On("GenerateJSONWithRetry", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(`{"evaluations":[{"score":60}]}`, nil)

	got, err := newTestEvaluator(t, gemini, qdrant).EvaluateAnswers(context.Background(), []string{"q"}, []string{"a"})

	require.NoError(t, err)
	assert.Len(t, got, 1)
	qdrant.AssertNotCalled(t, "SearchSimilar", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluateAnswers_RejectsSchemaViolations(t *testing.T) {
	tests := map[string]string{
		"missing evaluations": `{"scores":[1,2]}`,
		"fractional score":    `{"evaluations":[{"score":55.5}]}`,
		"string score":        `{"evaluations":[{"score":"high"}]}`,
		"not json":            `I would rate these answers highly.`,
	}

	for name, response := range tests {
		t.Run(name, func(t *testing.T) {
			gemini := new(MockGeminiService)
			gemini.On("GenerateJSONWithRetry", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(response, nil)

			_, err := newTestEvaluator(t, gemini, nil).EvaluateAnswers(context.Background(), []string{"q"}, []string{"a"})

			assert.Error(t, err)
		})
	}
}

func TestExtractSkills(t *testing.T) {
	gemini := new(MockGeminiService)
	gemini.On("GenerateJSONWithRetry", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Built REST APIs in Go")
	}), mock.Anything, mock.Anything).Return(`Here you go: {"skills": ["golang", "REST API", "teamwork"]}`, nil)

	skills, err := newTestEvaluator(t, gemini, nil).ExtractSkills(context.Background(), "Built REST APIs in Go with a small team.")

	require.NoError(t, err)
	assert.Equal(t, []string{"golang", "REST API", "teamwork"}, skills)
}

func TestExtractSkills_LongCVKeepsValidUTF8(t *testing.T) {
	// "é" is two bytes, so an odd byte limit falls inside a rune
	cv := "x" + strings.Repeat("é", maxCVCharsForPrompt)
	gemini := new(MockGeminiService)
	gemini.On("GenerateJSONWithRetry", mock.Anything, mock.MatchedBy(func(p string) bool {
		return utf8.ValidString(p)
	}), mock.Anything, mock.Anything).Return(`{"skills": []}`, nil)

	_, err := newTestEvaluator(t, gemini, nil).ExtractSkills(context.Background(), cv)

	require.NoError(t, err)
	gemini.AssertExpectations(t)
}

func TestExtractSkills_GeminiError(t *testing.T) {
	gemini := new(MockGeminiService)
	gemini.On("GenerateJSONWithRetry", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("unavailable"))

	_, err := newTestEvaluator(t, gemini, nil).ExtractSkills(context.Background(), "cv")

	assert.ErrorContains(t, err, "unavailable")
}
