package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/decisiontrace/decisiontrace/internal/middleware"
	"github.com/decisiontrace/decisiontrace/internal/service"
	"github.com/decisiontrace/decisiontrace/internal/worker"
)

// ExportHandler handles trace export endpoints
type ExportHandler struct {
	exportService *service.ExportService
	asynqClient   *asynq.Client
	logger        *zap.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *service.ExportService, asynqClient *asynq.Client, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		asynqClient:   asynqClient,
		logger:        logger,
	}
}

// Download handles GET /v1/sessions/:id/export. It builds the trace
// file synchronously and streams it back as JSON Lines.
func (h *ExportHandler) Download(c *fiber.Ctx) error {
	sessionID, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	data, err := h.exportService.ExportJSONL(c.Context(), sessionID)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.RecordTraceExport("sync")

	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="trace_%s.jsonl"`, sessionID))
	return c.Send(data)
}

// Enqueue handles POST /v1/sessions/:id/export. It queues a background
// export that lands the trace file in object storage.
func (h *ExportHandler) Enqueue(c *fiber.Ctx) error {
	sessionID, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	// Fail fast on unknown sessions before queuing.
	if _, err := h.exportService.Export(c.Context(), sessionID); err != nil {
		return serviceError(c, err)
	}

	task, err := worker.NewSessionExportTask(&worker.SessionExportPayload{
		SessionID:   sessionID,
		RequestedBy: c.Get("X-Requested-By"),
	})
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "failed to create export task")
	}

	info, err := h.asynqClient.Enqueue(task, asynq.Queue("default"))
	if err != nil {
		h.logger.Error("failed to enqueue export", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "failed to enqueue export")
	}

	middleware.RecordTraceExport("async")
	h.logger.Info("export enqueued",
		zap.String("session_id", sessionID.String()),
		zap.String("task_id", info.ID),
	)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"taskId":  info.ID,
		"status":  "queued",
		"message": "export will be written to object storage",
	})
}
