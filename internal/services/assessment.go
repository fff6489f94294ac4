package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/logger"
	"alfredoptarigan/admission-tracker/internal/metrics"
	"alfredoptarigan/admission-tracker/internal/models"
	"alfredoptarigan/admission-tracker/internal/repositories"
)

// AssessmentService records interview and survey outcomes on the applicant.
type AssessmentService interface {
	SubmitInterview(ctx context.Context, applicantID uuid.UUID, questions, answers []string) (*models.InterviewResult, error)
	SubmitSurvey(ctx context.Context, applicantID uuid.UUID, instrument string, responses map[int]interface{}) (*models.InstrumentResult, error)
}

type assessmentService struct {
	applicants   repositories.ApplicantRepository
	applications repositories.ApplicationRepository
	aggregator   InterviewScoringAggregator
	engine       CompetencyScoringEngine
	log          logger.Logger
}

func NewAssessmentService(
	applicants repositories.ApplicantRepository,
	applications repositories.ApplicationRepository,
	aggregator InterviewScoringAggregator,
	engine CompetencyScoringEngine,
	log logger.Logger,
) AssessmentService {
	return &assessmentService{
		applicants:   applicants,
		applications: applications,
		aggregator:   aggregator,
		engine:       engine,
		log:          log,
	}
}

// SubmitInterview scores the answers and completes step 2 when the applicant
// already has an application record.
func (s *assessmentService) SubmitInterview(ctx context.Context, applicantID uuid.UUID, questions, answers []string) (_ *models.InterviewResult, err error) {
	defer func() { metrics.ObserveTransition("submit_interview", err) }()

	if _, err := s.applicants.FindByID(ctx, applicantID); err != nil {
		return nil, err
	}

	result, err := s.aggregator.Aggregate(ctx, questions, answers)
	if err != nil {
		if apperror.IsCollaborator(err) {
			metrics.CollaboratorFailures.WithLabelValues("semantic_evaluator").Inc()
		}
		return nil, err
	}

	if err := s.applicants.UpdateInterview(ctx, applicantID, result.TotalScore); err != nil {
		return nil, err
	}

	// without a record the completed interview is picked up by Status later
	hasRecord, err := s.applications.Exists(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if hasRecord {
		_, err = s.applications.Update(ctx, applicantID, func(r *models.ApplicationRecord) error {
			r.Step2Completed = true
			r.AdvanceTo(3)
			return nil
		})
		if err != nil && !apperror.IsNotFound(err) {
			return nil, err
		}
	}

	s.log.Info("interview scored", map[string]interface{}{
		"applicant_id": applicantID.String(),
		"total_score":  result.TotalScore,
		"answers":      len(result.Evaluations),
	})

	return result, nil
}

func (s *assessmentService) SubmitSurvey(ctx context.Context, applicantID uuid.UUID, instrument string, responses map[int]interface{}) (_ *models.InstrumentResult, err error) {
	defer func() { metrics.ObserveTransition("submit_survey", err) }()

	if _, err := s.applicants.FindByID(ctx, applicantID); err != nil {
		return nil, err
	}

	result, err := s.engine.Score(instrument, responses)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal survey result: %w", err)
	}
	if err := s.applicants.UpdateSurvey(ctx, applicantID, instrument, raw); err != nil {
		return nil, err
	}

	s.log.Info("survey scored", map[string]interface{}{
		"applicant_id":  applicantID.String(),
		"instrument":    instrument,
		"total":         result.Total,
		"overall_level": result.OverallLevel,
	})

	return result, nil
}
