package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/admission-tracker/internal/models"
	"alfredoptarigan/admission-tracker/internal/services"
)

// AdminHandler exposes the transitions performed by admissions staff.
type AdminHandler struct {
	tracker services.ApplicationStateTracker
}

func NewAdminHandler(tracker services.ApplicationStateTracker) *AdminHandler {
	return &AdminHandler{tracker: tracker}
}

// HandleGenerateAcceptanceLetter handles POST /admin/applicants/:id/acceptance-letter
func (h *AdminHandler) HandleGenerateAcceptanceLetter(c *fiber.Ctx) error {
	applicantID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req models.GenerateLetterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	status, err := h.tracker.GenerateAcceptanceLetter(c.UserContext(), applicantID, req.ProgramVariant)
	if err != nil {
		return err
	}
	return c.JSON(status)
}

// HandleApproveInvoice handles POST /admin/applicants/:id/invoice/approve
func (h *AdminHandler) HandleApproveInvoice(c *fiber.Ctx) error {
	applicantID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req models.ApproveInvoiceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	status, err := h.tracker.ApproveInvoice(c.UserContext(), applicantID, req.ScholarshipPercentage)
	if err != nil {
		return err
	}
	return c.JSON(status)
}
