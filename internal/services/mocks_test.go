package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"alfredoptarigan/admission-tracker/internal/models"
)

type MockGeminiService struct {
	mock.Mock
}

func (m *MockGeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockGeminiService) GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error) {
	args := m.Called(ctx, prompt, temperature)
	return args.String(0), args.Error(1)
}

func (m *MockGeminiService) GenerateJSONWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	args := m.Called(ctx, prompt, temperature, maxRetries)
	return args.String(0), args.Error(1)
}

type MockQdrantService struct {
	mock.Mock
}

func (m *MockQdrantService) InitCollection(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockQdrantService) UpsertDocument(ctx context.Context, docID, docType, text string, embedding []float32) error {
	return m.Called(ctx, docID, docType, text, embedding).Error(0)
}

func (m *MockQdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error) {
	args := m.Called(ctx, queryEmbedding, docType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SearchResult), args.Error(1)
}

func (m *MockQdrantService) DeleteDocument(ctx context.Context, docID string) error {
	return m.Called(ctx, docID).Error(0)
}

type MockSemanticEvaluator struct {
	mock.Mock
}

func (m *MockSemanticEvaluator) EvaluateAnswers(ctx context.Context, questions, answers []string) ([]models.AnswerEvaluation, error) {
	args := m.Called(ctx, questions, answers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AnswerEvaluation), args.Error(1)
}

func (m *MockSemanticEvaluator) ExtractSkills(ctx context.Context, text string) ([]string, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockMeetingScheduler struct {
	mock.Mock
}

func (m *MockMeetingScheduler) Create(ctx context.Context, spec MeetingSpec) (models.MeetingInfo, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.MeetingInfo), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, email Email) error {
	return m.Called(ctx, email).Error(0)
}
