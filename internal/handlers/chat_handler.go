package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"analytics-service/internal/models"
	"analytics-service/internal/services"
	"analytics-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type ChatHandler struct {
	AnalyticsService *services.AnalyticsService
}

func NewChatHandler(analyticsService *services.AnalyticsService) *ChatHandler {
	return &ChatHandler{
		AnalyticsService: analyticsService,
	}
}

func (h *ChatHandler) Register(app *fiber.App) {
	gr := app.Group("analytics/api/v1")

	gr.Post("/chat", h.Chat)
}

func (h *ChatHandler) Chat(c fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("failed to parse chat request body", "error", err)
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("BAD_REQUEST", "Invalid request body"))
	}

	if strings.TrimSpace(req.Query) == "" {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("BAD_REQUEST", "Query must not be empty"))
	}

	resp, err := h.AnalyticsService.ProcessChat(c.Context(), req)
	if err != nil {
		slog.Error("chat pipeline failed", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("INTERNAL_SERVER_ERROR", "Failed to process query"))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponseWithRequestID(resp, resp.Metadata.RequestID))
}
