package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/admission-tracker/internal/models"
	"alfredoptarigan/admission-tracker/internal/services"
)

type ApplicationHandler struct {
	tracker services.ApplicationStateTracker
}

func NewApplicationHandler(tracker services.ApplicationStateTracker) *ApplicationHandler {
	return &ApplicationHandler{tracker: tracker}
}

// HandleStatus handles GET /applicants/:id/application/status
func (h *ApplicationHandler) HandleStatus(c *fiber.Ctx) error {
	applicantID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	status, err := h.tracker.Status(c.UserContext(), applicantID)
	if err != nil {
		return err
	}
	return c.JSON(status)
}

// HandleSaveDraft handles PUT /applicants/:id/application/draft. The body is
// stored as-is.
func (h *ApplicationHandler) HandleSaveDraft(c *fiber.Ctx) error {
	applicantID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	// fiber reuses the body buffer after the handler returns
	body := append([]byte(nil), c.Body()...)

	status, err := h.tracker.SaveDraft(c.UserContext(), applicantID, json.RawMessage(body))
	if err != nil {
		return err
	}
	return c.JSON(status)
}

// HandleSubmitStep1 handles POST /applicants/:id/application/step1
func (h *ApplicationHandler) HandleSubmitStep1(c *fiber.Ctx) error {
	applicantID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var form models.Step1Form
	if err := parseBody(c, &form); err != nil {
		return err
	}

	status, err := h.tracker.SubmitStep1(c.UserContext(), applicantID, form)
	if err != nil {
		return err
	}
	return c.JSON(status)
}

// HandleScheduleScreening handles POST /applicants/:id/application/screening
func (h *ApplicationHandler) HandleScheduleScreening(c *fiber.Ctx) error {
	applicantID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req models.ScheduleScreeningRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.tracker.ScheduleScreening(c.UserContext(), applicantID, req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// HandleDownloadAcceptanceLetter handles GET /applicants/:id/application/acceptance-letter
func (h *ApplicationHandler) HandleDownloadAcceptanceLetter(c *fiber.Ctx) error {
	applicantID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.tracker.DownloadAcceptanceLetter(c.UserContext(), applicantID)
	if err != nil {
		return err
	}
	return sendDocument(c, fmt.Sprintf("acceptance-letter-%s.txt", applicantID), doc)
}

// HandleConfirmInvoiceDates handles POST /applicants/:id/application/invoice-dates
func (h *ApplicationHandler) HandleConfirmInvoiceDates(c *fiber.Ctx) error {
	applicantID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req models.InvoiceDatesRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	status, err := h.tracker.ConfirmInvoiceDates(c.UserContext(), applicantID, req.StartDate, req.EndDate)
	if err != nil {
		return err
	}
	return c.JSON(status)
}

// HandleDownloadInvoice handles GET /applicants/:id/application/invoice
func (h *ApplicationHandler) HandleDownloadInvoice(c *fiber.Ctx) error {
	applicantID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.tracker.DownloadInvoice(c.UserContext(), applicantID)
	if err != nil {
		return err
	}
	return sendDocument(c, fmt.Sprintf("invoice-%s.txt", applicantID), doc)
}

// HandlePreviewInvoice handles GET /applicants/:id/application/invoice/preview
func (h *ApplicationHandler) HandlePreviewInvoice(c *fiber.Ctx) error {
	applicantID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	breakdown, err := h.tracker.PreviewInvoice(c.UserContext(), applicantID)
	if err != nil {
		return err
	}
	return c.JSON(breakdown)
}

func sendDocument(c *fiber.Ctx, filename string, doc []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Attachment(filename)
	return c.Send(doc)
}
