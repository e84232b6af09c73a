package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/complaint-desk/backend/internal/export"
	"github.com/complaint-desk/backend/internal/intake"
	"github.com/complaint-desk/backend/pkg/logger"
)

type ComplaintHandler struct {
	service *intake.Service
}

func NewComplaintHandler(service *intake.Service) *ComplaintHandler {
	return &ComplaintHandler{
		service: service,
	}
}

func (h *ComplaintHandler) Submit(c *fiber.Ctx) error {
	var req struct {
		Name         string `json:"name"`
		Age          int    `json:"age"`
		MobileNumber string `json:"mobile_number"`
		EmailID      string `json:"email_id"`
		Complaint    string `json:"complaint"`
		Department   string `json:"department"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.service.Submit(c.Context(), intake.SubmitRequest{
		Name:               req.Name,
		Age:                req.Age,
		MobileNumber:       req.MobileNumber,
		EmailID:            req.EmailID,
		Complaint:          req.Complaint,
		DepartmentOverride: req.Department,
	})

	if err != nil {
		var validationErr *intake.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "Validation failed",
				"fields": validationErr.Fields,
			})
		}

		logger.Error("Failed to process submission", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store complaint",
		})
	}

	response := fiber.Map{
		"id":              result.Record.ID,
		"department":      result.Record.Department,
		"confidence":      result.Confidence,
		"alert_attempted": result.AlertAttempted,
		"alert_sent":      result.AlertSent,
	}
	if result.ClassificationWarning != "" {
		response["warning"] = result.ClassificationWarning
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

func (h *ComplaintHandler) List(c *fiber.Ctx) error {
	records, err := h.service.List()
	if err != nil {
		logger.Error("Failed to fetch complaints", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch complaints",
		})
	}

	return c.JSON(fiber.Map{
		"complaints": records,
		"count":      len(records),
	})
}

func (h *ComplaintHandler) Search(c *fiber.Ctx) error {
	term := c.Query("q")

	records, err := h.service.Search(term)
	if err != nil {
		logger.Error("Failed to search complaints", zap.Error(err), zap.String("term", term))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search complaints",
		})
	}

	return c.JSON(fiber.Map{
		"complaints": records,
		"count":      len(records),
	})
}

func (h *ComplaintHandler) Export(c *fiber.Ctx) error {
	records, err := h.service.List()
	if err != nil {
		logger.Error("Failed to fetch complaints for export", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch complaints",
		})
	}

	format := c.Query("format", "csv")
	switch format {
	case "csv":
		data, err := export.CSV(records)
		if err != nil {
			logger.Error("Failed to render CSV export", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to export complaints",
			})
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="complaints.csv"`)
		return c.Send(data)

	case "xlsx":
		data, err := export.XLSX(records)
		if err != nil {
			logger.Error("Failed to render XLSX export", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to export complaints",
			})
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="complaints.xlsx"`)
		return c.Send(data)

	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported export format",
		})
	}
}
