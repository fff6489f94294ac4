package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/logger"
	"alfredoptarigan/admission-tracker/internal/models"
	"alfredoptarigan/admission-tracker/internal/repositories"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type ApplicantService interface {
	Register(ctx context.Context, req models.CreateApplicantRequest) (*models.Applicant, error)
	Profile(ctx context.Context, id uuid.UUID) (*models.ApplicantProfileResponse, error)
}

type applicantService struct {
	applicants repositories.ApplicantRepository
	normalizer SkillNormalizer
	log        logger.Logger
}

func NewApplicantService(applicants repositories.ApplicantRepository, normalizer SkillNormalizer, log logger.Logger) ApplicantService {
	return &applicantService{applicants: applicants, normalizer: normalizer, log: log}
}

func (s *applicantService) Register(ctx context.Context, req models.CreateApplicantRequest) (*models.Applicant, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	err := validation.Validate(email,
		validation.Required.Error("email is required"),
		validation.Match(emailPattern).Error("email is not a valid address"),
	)
	if err != nil {
		return nil, apperror.Validation("applicants.Register", "invalid applicant", err.Error())
	}

	now := time.Now()
	applicant := &models.Applicant{
		ID:        uuid.New(),
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Skills:    []string{},
		Role:      models.RoleApplicant,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.applicants.Create(ctx, applicant); err != nil {
		return nil, err
	}

	s.log.Info("applicant registered", map[string]interface{}{"applicant_id": applicant.ID.String()})
	return applicant, nil
}

// Profile returns the applicant with skills in display order and decoded
// survey results.
func (s *applicantService) Profile(ctx context.Context, id uuid.UUID) (*models.ApplicantProfileResponse, error) {
	applicant, err := s.applicants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	softSkills, err := decodeSurvey(applicant.SoftSkills)
	if err != nil {
		return nil, err
	}
	intelligences, err := decodeSurvey(applicant.Intelligences)
	if err != nil {
		return nil, err
	}

	return &models.ApplicantProfileResponse{
		ID:                    applicant.ID.String(),
		Email:                 applicant.Email,
		FirstName:             applicant.FirstName,
		LastName:              applicant.LastName,
		Skills:                []string(s.normalizer.SortForDisplay(SkillSet(applicant.Skills))),
		CVScore:               applicant.CVScore,
		InterviewScore:        applicant.InterviewScore,
		InterviewCompleted:    applicant.InterviewCompleted,
		SoftSkills:            softSkills,
		MultipleIntelligences: intelligences,
	}, nil
}

func decodeSurvey(raw datatypes.JSON) (*models.InstrumentResult, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var result models.InstrumentResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode survey result: %w", err)
	}
	return &result, nil
}
