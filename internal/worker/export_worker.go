package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/decisiontrace/decisiontrace/internal/service"
)

// TypeSessionExport is the task type for session trace export
const TypeSessionExport = "export:session"

// SessionExportPayload is the payload for session export tasks
type SessionExportPayload struct {
	SessionID   uuid.UUID `json:"session_id"`
	RequestedBy string    `json:"requested_by"`
}

// NewSessionExportTask creates a session export task
func NewSessionExportTask(payload *SessionExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session export payload: %w", err)
	}
	return asynq.NewTask(TypeSessionExport, data, asynq.MaxRetry(3), asynq.Timeout(10*time.Minute)), nil
}

// ExportWorker handles session export tasks
type ExportWorker struct {
	logger        *zap.Logger
	exportService *service.ExportService
	minioClient   *minio.Client
	bucket        string
}

// NewExportWorker creates a new export worker
func NewExportWorker(
	logger *zap.Logger,
	exportService *service.ExportService,
	minioClient *minio.Client,
	bucket string,
) *ExportWorker {
	return &ExportWorker{
		logger:        logger,
		exportService: exportService,
		minioClient:   minioClient,
		bucket:        bucket,
	}
}

// ProcessTask builds a session's trace file and uploads it to storage
func (w *ExportWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload SessionExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal session export payload: %w", err)
	}

	w.logger.Info("processing session export",
		zap.String("session_id", payload.SessionID.String()),
		zap.String("requested_by", payload.RequestedBy),
	)

	data, err := w.exportService.ExportJSONL(ctx, payload.SessionID)
	if err != nil {
		return fmt.Errorf("failed to export session: %w", err)
	}

	filename := fmt.Sprintf("trace_%s.jsonl", time.Now().UTC().Format("20060102_150405"))
	path := fmt.Sprintf("exports/%s/%s", payload.SessionID.String(), filename)

	reader := bytes.NewReader(data)
	_, err = w.minioClient.PutObject(ctx, w.bucket, path, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/x-ndjson",
	})
	if err != nil {
		return fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	w.logger.Info("session export completed",
		zap.String("session_id", payload.SessionID.String()),
		zap.String("path", path),
		zap.Int("size", len(data)),
	)

	return nil
}
