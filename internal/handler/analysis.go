package handler

import (
	"fmt"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/decisiontrace/decisiontrace/internal/service"
	"github.com/decisiontrace/decisiontrace/internal/worker"
)

// AnalysisHandler handles thematic analysis endpoints
type AnalysisHandler struct {
	analysisService *service.AnalysisService
	responseService *service.ResponseService
	asynqClient     *asynq.Client
	minioClient     *minio.Client
	bucket          string
	logger          *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(
	analysisService *service.AnalysisService,
	responseService *service.ResponseService,
	asynqClient *asynq.Client,
	minioClient *minio.Client,
	bucket string,
	logger *zap.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		responseService: responseService,
		asynqClient:     asynqClient,
		minioClient:     minioClient,
		bucket:          bucket,
		logger:          logger,
	}
}

// Trigger handles POST /v1/responses/:id/analysis. Enrichment runs in
// the background; the capture path never waits on it.
func (h *AnalysisHandler) Trigger(c *fiber.Ctx) error {
	responseID, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	if _, err := h.responseService.Get(c.Context(), responseID); err != nil {
		return serviceError(c, err)
	}

	task, err := worker.NewTranscriptAnalysisTask(&worker.TranscriptAnalysisPayload{
		ResponseID: responseID,
		AnalyzedBy: c.Get("X-Requested-By"),
	})
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "failed to create analysis task")
	}

	info, err := h.asynqClient.Enqueue(task, asynq.Queue("low"))
	if err != nil {
		h.logger.Error("failed to enqueue analysis", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "failed to enqueue analysis")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"taskId": info.ID,
		"status": "queued",
	})
}

// UploadAudio handles POST /v1/responses/:id/audio. The file is staged
// in object storage and a background transcription task picks it up,
// writes the transcript onto the response and runs analysis over it.
func (h *AnalysisHandler) UploadAudio(c *fiber.Ctx) error {
	responseID, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	if _, err := h.responseService.Get(c.Context(), responseID); err != nil {
		return serviceError(c, err)
	}

	if h.minioClient == nil {
		return errorResponse(c, fiber.StatusServiceUnavailable, "audio storage is not configured")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "file is required")
	}

	f, err := file.Open()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "failed to open file")
	}
	defer f.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := fmt.Sprintf("audio/%s/%s", responseID, filepath.Base(file.Filename))
	if _, err := h.minioClient.PutObject(c.Context(), h.bucket, objectName, f, file.Size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		h.logger.Error("failed to stage audio", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "failed to store audio")
	}

	task, err := worker.NewAudioTranscriptionTask(&worker.AudioTranscriptionPayload{
		ResponseID:  responseID,
		AudioObject: objectName,
		AnalyzedBy:  c.Get("X-Requested-By"),
	})
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "failed to create transcription task")
	}

	info, err := h.asynqClient.Enqueue(task, asynq.Queue("low"))
	if err != nil {
		h.logger.Error("failed to enqueue transcription", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "failed to enqueue transcription")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"taskId": info.ID,
		"object": objectName,
		"status": "queued",
	})
}

// Latest handles GET /v1/responses/:id/analysis
func (h *AnalysisHandler) Latest(c *fiber.Ctx) error {
	responseID, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	analysis, err := h.analysisService.Latest(c.Context(), responseID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(analysis)
}
