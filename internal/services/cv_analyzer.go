package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/logger"
	"alfredoptarigan/admission-tracker/internal/metrics"
	"alfredoptarigan/admission-tracker/internal/models"
	"alfredoptarigan/admission-tracker/internal/repositories"
)

// CVAnalyzer runs one queued CV analysis job to completion.
type CVAnalyzer interface {
	Analyze(ctx context.Context, analysisID uuid.UUID) error
}

type cvAnalyzer struct {
	analyses   repositories.CVAnalysisRepository
	applicants repositories.ApplicantRepository
	extractor  DocumentTextExtractor
	evaluator  SemanticEvaluator
	normalizer SkillNormalizer
	log        logger.Logger
}

func NewCVAnalyzer(
	analyses repositories.CVAnalysisRepository,
	applicants repositories.ApplicantRepository,
	extractor DocumentTextExtractor,
	evaluator SemanticEvaluator,
	normalizer SkillNormalizer,
	log logger.Logger,
) CVAnalyzer {
	return &cvAnalyzer{
		analyses:   analyses,
		applicants: applicants,
		extractor:  extractor,
		evaluator:  evaluator,
		normalizer: normalizer,
		log:        log,
	}
}

// Analyze claims the job, extracts canonical skills from the CV and stores
// them with the CV score on the applicant. A job already claimed elsewhere is
// skipped.
func (a *cvAnalyzer) Analyze(ctx context.Context, analysisID uuid.UUID) error {
	claimed, err := a.analyses.Claim(ctx, analysisID)
	if err != nil {
		return err
	}
	if !claimed {
		a.log.Debug("cv analysis already claimed", map[string]interface{}{"analysis_id": analysisID.String()})
		return nil
	}

	log := a.log.WithFields(map[string]interface{}{"analysis_id": analysisID.String()})
	log.Info("cv analysis started", nil)

	analysis, err := a.analyses.FindByID(ctx, analysisID)
	if err != nil {
		return a.fail(ctx, log, analysisID, err)
	}

	skills, err := a.extractSkills(ctx, analysis)
	if err != nil {
		return a.fail(ctx, log, analysisID, err)
	}

	score := CVScore(len(skills))
	if err := a.applicants.UpdateSkills(ctx, analysis.ApplicantID, skills, score); err != nil {
		return a.fail(ctx, log, analysisID, err)
	}
	if err := a.analyses.Complete(ctx, analysisID, skills, score); err != nil {
		return a.fail(ctx, log, analysisID, err)
	}

	metrics.CVJobs.WithLabelValues(string(models.StatusCompleted)).Inc()
	log.Info("cv analysis completed", map[string]interface{}{
		"applicant_id": analysis.ApplicantID.String(),
		"skills":       len(skills),
		"cv_score":     score,
	})
	return nil
}

func (a *cvAnalyzer) extractSkills(ctx context.Context, analysis *models.CVAnalysis) ([]string, error) {
	text, err := a.extractor.ExtractText(analysis.Document.FilePath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperror.Validation("cv.Analyze", "no text could be extracted from the CV")
	}

	raw, err := a.evaluator.ExtractSkills(ctx, text)
	if err != nil {
		metrics.CollaboratorFailures.WithLabelValues("semantic_evaluator").Inc()
		return nil, apperror.Collaborator("cv.Analyze", "semantic evaluator", err)
	}

	return []string(a.normalizer.Normalize(raw)), nil
}

func (a *cvAnalyzer) fail(ctx context.Context, log logger.Logger, analysisID uuid.UUID, cause error) error {
	metrics.CVJobs.WithLabelValues(string(models.StatusFailed)).Inc()
	log.WithError(cause).Error("cv analysis failed", nil)

	if err := a.analyses.Fail(ctx, analysisID, failureMessage(cause)); err != nil {
		return fmt.Errorf("failed to mark analysis failed: %w (cause: %v)", err, cause)
	}
	return cause
}

// failureMessage keeps collaborator internals out of the stored message.
func failureMessage(err error) string {
	if appErr, ok := apperror.As(err); ok {
		return appErr.Message
	}
	return "cv analysis failed"
}
