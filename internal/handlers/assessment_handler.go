package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/admission-tracker/internal/models"
	"alfredoptarigan/admission-tracker/internal/services"
)

type AssessmentHandler struct {
	assessments services.AssessmentService
}

func NewAssessmentHandler(assessments services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

// HandleInterview handles POST /applicants/:id/interview
func (h *AssessmentHandler) HandleInterview(c *fiber.Ctx) error {
	applicantID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req models.InterviewRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.assessments.SubmitInterview(c.UserContext(), applicantID, req.Questions, req.Answers)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// HandleSurvey handles POST /applicants/:id/surveys/:instrument
func (h *AssessmentHandler) HandleSurvey(c *fiber.Ctx) error {
	applicantID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req models.SurveyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.assessments.SubmitSurvey(c.UserContext(), applicantID, c.Params("instrument"), req.Responses)
	if err != nil {
		return err
	}

	return c.JSON(result)
}
