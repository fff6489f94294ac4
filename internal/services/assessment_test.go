package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/logger"
	"alfredoptarigan/admission-tracker/internal/models"
)

type assessmentFixture struct {
	service    AssessmentService
	applicants *fakeApplicants
	apps       *fakeApplications
	evaluator  *MockSemanticEvaluator
	applicant  models.Applicant
}

func newAssessmentFixture(t *testing.T) *assessmentFixture {
	t.Helper()

	engine, err := NewCompetencyScoringEngine()
	require.NoError(t, err)

	applicant := models.Applicant{ID: uuid.New(), Email: "ana@example.com"}
	f := &assessmentFixture{
		applicants: newFakeApplicants(applicant),
		apps:       newFakeApplications(),
		evaluator:  new(MockSemanticEvaluator),
		applicant:  applicant,
	}
	f.service = NewAssessmentService(f.applicants, f.apps, NewInterviewScoringAggregator(f.evaluator), engine, logger.NewTestLogger(t))
	return f
}

func TestAssessment_SubmitInterviewWithoutRecord(t *testing.T) {
	f := newAssessmentFixture(t)
	questions := []string{"Why this program?", "Describe a conflict."}
	answers := []string{"Because...", "Once..."}
	f.evaluator.On("EvaluateAnswers", mock.Anything, questions, answers).
		Return([]models.AnswerEvaluation{{Score: 80}, {Score: 61}}, nil)

	result, err := f.service.SubmitInterview(context.Background(), f.applicant.ID, questions, answers)

	require.NoError(t, err)
	assert.Equal(t, 71, result.TotalScore)

	stored, _ := f.applicants.FindByID(context.Background(), f.applicant.ID)
	assert.True(t, stored.InterviewCompleted)
	require.NotNil(t, stored.InterviewScore)
	assert.Equal(t, 71, *stored.InterviewScore)

	_, exists := f.apps.get(f.applicant.ID)
	assert.False(t, exists, "interview must not create an application record")
}

func TestAssessment_SubmitInterviewCompletesStep2(t *testing.T) {
	f := newAssessmentFixture(t)
	record := models.NewApplicationRecord(f.applicant.ID)
	record.Step1Completed = true
	record.CurrentStep = 2
	f.apps.put(*record)
	f.evaluator.On("EvaluateAnswers", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.AnswerEvaluation{{Score: 90}}, nil)

	_, err := f.service.SubmitInterview(context.Background(), f.applicant.ID, []string{"q"}, []string{"a"})

	require.NoError(t, err)
	stored, _ := f.apps.get(f.applicant.ID)
	assert.True(t, stored.Step2Completed)
	assert.Equal(t, 3, stored.CurrentStep)
}

func TestAssessment_SubmitInterviewRecordLookupFails(t *testing.T) {
	f := newAssessmentFixture(t)
	f.apps.existsErr = errors.New("connection reset")
	f.evaluator.On("EvaluateAnswers", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.AnswerEvaluation{{Score: 90}}, nil)

	_, err := f.service.SubmitInterview(context.Background(), f.applicant.ID, []string{"q"}, []string{"a"})

	assert.EqualError(t, err, "connection reset")
}

func TestAssessment_SubmitInterviewEvaluatorFailure(t *testing.T) {
	f := newAssessmentFixture(t)
	f.evaluator.On("EvaluateAnswers", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("model overloaded"))

	_, err := f.service.SubmitInterview(context.Background(), f.applicant.ID, []string{"q"}, []string{"a"})

	assert.True(t, apperror.IsCollaborator(err))
	stored, _ := f.applicants.FindByID(context.Background(), f.applicant.ID)
	assert.False(t, stored.InterviewCompleted)
}

func TestAssessment_SubmitInterviewUnknownApplicant(t *testing.T) {
	f := newAssessmentFixture(t)

	_, err := f.service.SubmitInterview(context.Background(), uuid.New(), []string{"q"}, []string{"a"})

	assert.True(t, apperror.IsNotFound(err))
	f.evaluator.AssertNotCalled(t, "EvaluateAnswers", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssessment_SubmitSurvey(t *testing.T) {
	f := newAssessmentFixture(t)
	responses := map[int]interface{}{1: 5, 9: "5", 2: 5}

	result, err := f.service.SubmitSurvey(context.Background(), f.applicant.ID, InstrumentMultipleIntelligences, responses)

	require.NoError(t, err)
	assert.Equal(t, InstrumentMultipleIntelligences, result.Instrument)

	stored, _ := f.applicants.FindByID(context.Background(), f.applicant.ID)
	var saved models.InstrumentResult
	require.NoError(t, json.Unmarshal(stored.Intelligences, &saved))
	assert.Equal(t, result.Total, saved.Total)
	assert.Equal(t, result.OverallLevel, saved.OverallLevel)
}

func TestAssessment_SubmitSurveyUnknownInstrument(t *testing.T) {
	f := newAssessmentFixture(t)

	_, err := f.service.SubmitSurvey(context.Background(), f.applicant.ID, "big-five", map[int]interface{}{})

	assert.True(t, apperror.IsValidation(err))
}

func TestApplicantService_Register(t *testing.T) {
	applicants := newFakeApplicants()
	svc := NewApplicantService(applicants, NewSkillNormalizer(), logger.NewTestLogger(t))

	created, err := svc.Register(context.Background(), models.CreateApplicantRequest{
		Email:     "  Ana@Example.com ",
		FirstName: " Ana ",
	})

	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", created.Email)
	assert.Equal(t, "Ana", created.FirstName)
	assert.Equal(t, models.RoleApplicant, created.Role)
	assert.True(t, created.IsActive)

	_, err = svc.Register(context.Background(), models.CreateApplicantRequest{Email: "ana@example.com"})
	assert.True(t, apperror.IsStateConflict(err))

	_, err = svc.Register(context.Background(), models.CreateApplicantRequest{Email: "not-an-email"})
	assert.True(t, apperror.IsValidation(err))
}

func TestApplicantService_Profile(t *testing.T) {
	id := uuid.New()
	applicants := newFakeApplicants(models.Applicant{
		ID:            id,
		Email:         "ana@example.com",
		Skills:        []string{"Teamwork", "SQL", "Go", "Communication"},
		CVScore:       40,
		Intelligences: []byte(`{"instrument":"multiple-intelligences","total":15,"overallLevel":"Medium"}`),
	})
	svc := NewApplicantService(applicants, NewSkillNormalizer(), logger.NewNoOpLogger())

	profile, err := svc.Profile(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL", "Communication", "Teamwork"}, profile.Skills)
	assert.Equal(t, 40, profile.CVScore)
	assert.Nil(t, profile.SoftSkills)
	require.NotNil(t, profile.MultipleIntelligences)
	assert.Equal(t, "Medium", profile.MultipleIntelligences.OverallLevel)
}
