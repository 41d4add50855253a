// Package api holds the HTTP handlers for the Strady Imo backend.
package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/strady/imo-backend/internal/finance"
	"github.com/strady/imo-backend/internal/rates"
	"github.com/strady/imo-backend/internal/report"
)

// Handler binds the HTTP surface to its collaborators. The store and receiver
// are injected; handlers keep no package-level state.
type Handler struct {
	Store    *rates.Store
	Receiver *rates.Receiver
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/", h.HandleWelcome)
	app.Get("/api/health", h.HandleHealth)
	app.Get("/api/loan-rates", h.HandleLoanRates)
	app.Post("/api/upload-rates", h.HandleUploadRates)
	app.Post("/api/generate-pdf", h.HandleGeneratePDF)
}

func (h *Handler) HandleWelcome(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Strady Imo API. See /docs for the interactive documentation.",
	})
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleLoanRates serves the cached rate table. No parsing happens on this
// path; the store always holds a ready snapshot.
func (h *Handler) HandleLoanRates(c *fiber.Ctx) error {
	return c.JSON(h.Store.Records())
}

// HandleUploadRates accepts a replacement rates spreadsheet (CSV or XLSX),
// overwrites the single file slot, and reloads the cached table before
// acknowledging. A failed write leaves the previous table authoritative.
func (h *Handler) HandleUploadRates(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded. Use form field 'file'.",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Could not read uploaded file.",
		})
	}
	defer src.Close()

	if err := h.Receiver.Accept(src); err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("rates upload failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store rates file.",
		})
	}

	return c.JSON(fiber.Map{"message": "Rates file uploaded and table reloaded."})
}

// HandleGeneratePDF computes the summary figures for the submitted investment
// model and streams them back as a PDF download.
func (h *Handler) HandleGeneratePDF(c *fiber.Ctx) error {
	var input finance.InvestmentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}

	summary, err := finance.Compute(input)
	if err != nil {
		if errors.Is(err, finance.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+report.FileName+`"`)
	if err := report.Render(c.Response().BodyWriter(), input, summary); err != nil {
		log.Error().Err(err).Msg("summary rendering failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to render summary document.",
		})
	}
	return nil
}
