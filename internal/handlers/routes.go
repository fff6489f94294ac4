package handlers

import "github.com/gofiber/fiber/v2"

type Handlers struct {
	Applicant   *ApplicantHandler
	Upload      *UploadHandler
	Result      *ResultHandler
	Assessment  *AssessmentHandler
	Application *ApplicationHandler
	Admin       *AdminHandler
}

// RegisterRoutes mounts the API under router, normally the /api/v1 group.
func RegisterRoutes(router fiber.Router, h Handlers) {
	if h.Applicant != nil {
		router.Post("/applicants", h.Applicant.HandleCreate)
		router.Get("/applicants/:id", h.Applicant.HandleGetProfile)
	}
	if h.Upload != nil {
		router.Post("/applicants/:id/cv", h.Upload.HandleUploadCV)
	}
	if h.Result != nil {
		router.Get("/cv-analyses/:id", h.Result.HandleGetCVAnalysis)
	}
	if h.Assessment != nil {
		router.Post("/applicants/:id/interview", h.Assessment.HandleInterview)
		router.Post("/applicants/:id/surveys/:instrument", h.Assessment.HandleSurvey)
	}

	if h.Application != nil {
		app := router.Group("/applicants/:id/application")
		app.Get("/status", h.Application.HandleStatus)
		app.Put("/draft", h.Application.HandleSaveDraft)
		app.Post("/step1", h.Application.HandleSubmitStep1)
		app.Post("/screening", h.Application.HandleScheduleScreening)
		app.Get("/acceptance-letter", h.Application.HandleDownloadAcceptanceLetter)
		app.Post("/invoice-dates", h.Application.HandleConfirmInvoiceDates)
		app.Get("/invoice", h.Application.HandleDownloadInvoice)
		app.Get("/invoice/preview", h.Application.HandlePreviewInvoice)
	}

	if h.Admin != nil {
		admin := router.Group("/admin/applicants/:id")
		admin.Post("/acceptance-letter", h.Admin.HandleGenerateAcceptanceLetter)
		admin.Post("/invoice/approve", h.Admin.HandleApproveInvoice)
	}
}
