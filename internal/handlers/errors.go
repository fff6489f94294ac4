package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/logger"
)

// ErrorHandler maps application errors to HTTP responses. Collaborator causes
// are logged and replaced with a generic message.
func ErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if appErr, ok := apperror.As(err); ok {
			switch {
			case apperror.IsValidation(appErr):
				body := fiber.Map{"error": appErr.Message, "code": fiber.StatusBadRequest}
				if len(appErr.Details) > 0 {
					body["details"] = appErr.Details
				}
				return c.Status(fiber.StatusBadRequest).JSON(body)
			case apperror.IsNotFound(appErr):
				return errorJSON(c, fiber.StatusNotFound, appErr.Message)
			case apperror.IsStateConflict(appErr):
				return errorJSON(c, fiber.StatusConflict, appErr.Message)
			case apperror.IsCollaborator(appErr):
				log.WithError(err).Error("collaborator failure", map[string]interface{}{
					"op":     appErr.Op,
					"method": c.Method(),
					"path":   c.Path(),
				})
				return errorJSON(c, fiber.StatusBadGateway, "an upstream service is unavailable, please retry later")
			}
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return errorJSON(c, fe.Code, fe.Message)
		}

		log.WithError(err).Error("unhandled error", map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		})
		return errorJSON(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func errorJSON(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("parse path", "invalid "+name+" format")
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Validation("parse body", "invalid request payload", err.Error())
	}
	return nil
}
