package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"

	"alfredoptarigan/admission-tracker/internal/models"
)

type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) status(args mock.Arguments) (*models.ApplicationStatus, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApplicationStatus), args.Error(1)
}

func (m *MockTracker) doc(args mock.Arguments) ([]byte, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockTracker) SaveDraft(ctx context.Context, id uuid.UUID, formData json.RawMessage) (*models.ApplicationStatus, error) {
	return m.status(m.Called(ctx, id, formData))
}

func (m *MockTracker) SubmitStep1(ctx context.Context, id uuid.UUID, form models.Step1Form) (*models.ApplicationStatus, error) {
	return m.status(m.Called(ctx, id, form))
}

func (m *MockTracker) ScheduleScreening(ctx context.Context, id uuid.UUID, req models.ScheduleScreeningRequest) (*models.ScheduleScreeningResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduleScreeningResponse), args.Error(1)
}

func (m *MockTracker) DownloadAcceptanceLetter(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return m.doc(m.Called(ctx, id))
}

func (m *MockTracker) ConfirmInvoiceDates(ctx context.Context, id uuid.UUID, start, end time.Time) (*models.ApplicationStatus, error) {
	return m.status(m.Called(ctx, id, start, end))
}

func (m *MockTracker) DownloadInvoice(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return m.doc(m.Called(ctx, id))
}

func (m *MockTracker) PreviewInvoice(ctx context.Context, id uuid.UUID) (*models.InvoiceBreakdown, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvoiceBreakdown), args.Error(1)
}

func (m *MockTracker) Status(ctx context.Context, id uuid.UUID) (*models.ApplicationStatus, error) {
	return m.status(m.Called(ctx, id))
}

func (m *MockTracker) GenerateAcceptanceLetter(ctx context.Context, id uuid.UUID, variant models.ProgramVariant) (*models.ApplicationStatus, error) {
	return m.status(m.Called(ctx, id, variant))
}

func (m *MockTracker) ApproveInvoice(ctx context.Context, id uuid.UUID, pct float64) (*models.ApplicationStatus, error) {
	return m.status(m.Called(ctx, id, pct))
}

type MockAssessments struct {
	mock.Mock
}

func (m *MockAssessments) SubmitInterview(ctx context.Context, id uuid.UUID, questions, answers []string) (*models.InterviewResult, error) {
	args := m.Called(ctx, id, questions, answers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InterviewResult), args.Error(1)
}

func (m *MockAssessments) SubmitSurvey(ctx context.Context, id uuid.UUID, instrument string, responses map[int]interface{}) (*models.InstrumentResult, error) {
	args := m.Called(ctx, id, instrument, responses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InstrumentResult), args.Error(1)
}

type MockApplicantRepo struct {
	mock.Mock
}

func (m *MockApplicantRepo) Create(ctx context.Context, a *models.Applicant) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockApplicantRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Applicant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Applicant), args.Error(1)
}

func (m *MockApplicantRepo) UpdateSkills(ctx context.Context, id uuid.UUID, skills []string, cvScore int) error {
	return m.Called(ctx, id, skills, cvScore).Error(0)
}

func (m *MockApplicantRepo) UpdateInterview(ctx context.Context, id uuid.UUID, score int) error {
	return m.Called(ctx, id, score).Error(0)
}

func (m *MockApplicantRepo) UpdateSurvey(ctx context.Context, id uuid.UUID, instrument string, result datatypes.JSON) error {
	return m.Called(ctx, id, instrument, result).Error(0)
}

type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) Create(ctx context.Context, d *models.Document) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDocumentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

type MockAnalysisRepo struct {
	mock.Mock
}

func (m *MockAnalysisRepo) Create(ctx context.Context, a *models.CVAnalysis) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAnalysisRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.CVAnalysis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CVAnalysis), args.Error(1)
}

func (m *MockAnalysisRepo) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAnalysisRepo) Complete(ctx context.Context, id uuid.UUID, skills []string, cvScore int) error {
	return m.Called(ctx, id, skills, cvScore).Error(0)
}

func (m *MockAnalysisRepo) Fail(ctx context.Context, id uuid.UUID, msg string) error {
	return m.Called(ctx, id, msg).Error(0)
}

func (m *MockAnalysisRepo) FindQueued(ctx context.Context, limit int) ([]models.CVAnalysis, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CVAnalysis), args.Error(1)
}

type MockWorker struct {
	mock.Mock
}

func (m *MockWorker) Start(ctx context.Context) { m.Called(ctx) }
func (m *MockWorker) Stop()                     { m.Called() }
func (m *MockWorker) EnqueueJob(id uuid.UUID)   { m.Called(id) }
