package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/admission-tracker/internal/models"
	"alfredoptarigan/admission-tracker/internal/services"
)

type ApplicantHandler struct {
	applicants services.ApplicantService
}

func NewApplicantHandler(applicants services.ApplicantService) *ApplicantHandler {
	return &ApplicantHandler{applicants: applicants}
}

// HandleCreate handles POST /applicants
func (h *ApplicantHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateApplicantRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	applicant, err := h.applicants.Register(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(applicant)
}

// HandleGetProfile handles GET /applicants/:id
func (h *ApplicantHandler) HandleGetProfile(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	profile, err := h.applicants.Profile(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(profile)
}
