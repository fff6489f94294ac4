package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/admission-tracker/internal/models"
	"alfredoptarigan/admission-tracker/internal/repositories"
)

type ResultHandler struct {
	analysisRepo repositories.CVAnalysisRepository
}

func NewResultHandler(analysisRepo repositories.CVAnalysisRepository) *ResultHandler {
	return &ResultHandler{
		analysisRepo: analysisRepo,
	}
}

// HandleGetCVAnalysis handles GET /cv-analyses/:id
func (h *ResultHandler) HandleGetCVAnalysis(c *fiber.Ctx) error {
	analysisID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	analysis, err := h.analysisRepo.FindByID(c.UserContext(), analysisID)
	if err != nil {
		return err
	}

	response := models.CVAnalysisResponse{
		ID:     analysis.ID.String(),
		Status: string(analysis.Status),
	}

	// results only once the job is done
	switch analysis.Status {
	case models.StatusCompleted:
		response.Skills = []string(analysis.Skills)
		response.CVScore = analysis.CVScore
	case models.StatusFailed:
		response.ErrorMessage = analysis.ErrorMessage
	}

	return c.JSON(response)
}
