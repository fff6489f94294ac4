package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/logger"
	"alfredoptarigan/admission-tracker/internal/models"
	"alfredoptarigan/admission-tracker/internal/repositories"
	"alfredoptarigan/admission-tracker/internal/services"
)

type UploadHandler struct {
	applicantRepo  repositories.ApplicantRepository
	docRepo        repositories.DocumentRepository
	analysisRepo   repositories.CVAnalysisRepository
	storageService services.StorageService
	worker         services.Worker
	log            logger.Logger
}

func NewUploadHandler(
	applicantRepo repositories.ApplicantRepository,
	docRepo repositories.DocumentRepository,
	analysisRepo repositories.CVAnalysisRepository,
	storageService services.StorageService,
	worker services.Worker,
	log logger.Logger,
) *UploadHandler {
	return &UploadHandler{
		applicantRepo:  applicantRepo,
		docRepo:        docRepo,
		analysisRepo:   analysisRepo,
		storageService: storageService,
		worker:         worker,
		log:            log,
	}
}

// HandleUploadCV handles POST /applicants/:id/cv. The CV is stored and a
// queued analysis job is returned; skills are extracted asynchronously.
func (h *UploadHandler) HandleUploadCV(c *fiber.Ctx) error {
	applicantID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	if _, err := h.applicantRepo.FindByID(ctx, applicantID); err != nil {
		return err
	}

	cvFile, err := c.FormFile("cv")
	if err != nil {
		return apperror.Validation("upload cv", "no CV uploaded, send the PDF in the 'cv' form field")
	}

	filename, filePath, err := h.storageService.SaveFile(cvFile, applicantID)
	if err != nil {
		return err
	}

	now := time.Now()
	doc := &models.Document{
		ID:               uuid.New(),
		ApplicantID:      applicantID,
		Filename:         filename,
		OriginalFileName: cvFile.Filename,
		FileType:         "cv",
		FilePath:         filePath,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := h.docRepo.Create(ctx, doc); err != nil {
		h.cleanup(filename)
		return err
	}

	analysis := &models.CVAnalysis{
		ID:          uuid.New(),
		ApplicantID: applicantID,
		DocumentID:  doc.ID,
		Status:      models.StatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.analysisRepo.Create(ctx, analysis); err != nil {
		return err
	}

	h.worker.EnqueueJob(analysis.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.UploadResponse{
		ID:           doc.ID.String(),
		Filename:     doc.Filename,
		OriginalName: doc.OriginalFileName,
		FileType:     doc.FileType,
		AnalysisID:   analysis.ID.String(),
	})
}

func (h *UploadHandler) cleanup(filename string) {
	if err := h.storageService.DeleteFile(filename); err != nil {
		h.log.WithError(err).Warn("failed to remove orphaned upload", map[string]interface{}{"filename": filename})
	}
}
