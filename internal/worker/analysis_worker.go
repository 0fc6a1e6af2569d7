package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/decisiontrace/decisiontrace/internal/llm"
	apperrors "github.com/decisiontrace/decisiontrace/internal/pkg/errors"
	"github.com/decisiontrace/decisiontrace/internal/service"
)

const (
	// TypeTranscriptAnalysis is the task type for thematic analysis
	TypeTranscriptAnalysis = "analysis:transcript"
	// TypeAudioTranscription is the task type for think-aloud transcription
	TypeAudioTranscription = "analysis:transcribe"
)

// TranscriptAnalysisPayload is the payload for thematic analysis tasks
type TranscriptAnalysisPayload struct {
	ResponseID uuid.UUID `json:"response_id"`
	AnalyzedBy string    `json:"analyzed_by"`
}

// NewTranscriptAnalysisTask creates a thematic analysis task
func NewTranscriptAnalysisTask(payload *TranscriptAnalysisPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript analysis payload: %w", err)
	}
	return asynq.NewTask(TypeTranscriptAnalysis, data, asynq.MaxRetry(2), asynq.Timeout(5*time.Minute)), nil
}

// AudioTranscriptionPayload is the payload for transcription tasks.
// AudioObject names a staged upload in the object storage bucket.
type AudioTranscriptionPayload struct {
	ResponseID  uuid.UUID `json:"response_id"`
	AudioObject string    `json:"audio_object"`
	AnalyzedBy  string    `json:"analyzed_by"`
}

// NewAudioTranscriptionTask creates an audio transcription task
func NewAudioTranscriptionTask(payload *AudioTranscriptionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcription payload: %w", err)
	}
	return asynq.NewTask(TypeAudioTranscription, data, asynq.MaxRetry(2), asynq.Timeout(10*time.Minute)), nil
}

// TranscriptStore persists transcripts produced from staged audio.
type TranscriptStore interface {
	SetTranscript(ctx context.Context, id uuid.UUID, transcript string) error
}

// AnalysisWorker handles transcript enrichment tasks
type AnalysisWorker struct {
	logger          *zap.Logger
	analysisService *service.AnalysisService
	transcripts     TranscriptStore
	minioClient     *minio.Client
	bucket          string
}

// NewAnalysisWorker creates a new analysis worker
func NewAnalysisWorker(
	logger *zap.Logger,
	analysisService *service.AnalysisService,
	transcripts TranscriptStore,
	minioClient *minio.Client,
	bucket string,
) *AnalysisWorker {
	return &AnalysisWorker{
		logger:          logger,
		analysisService: analysisService,
		transcripts:     transcripts,
		minioClient:     minioClient,
		bucket:          bucket,
	}
}

// ProcessTask runs thematic analysis for a response's transcript. The
// analysis itself soft-fails, so the only retryable errors here are
// persistence failures.
func (w *AnalysisWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload TranscriptAnalysisPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal transcript analysis payload: %w", err)
	}

	w.logger.Info("processing transcript analysis",
		zap.String("response_id", payload.ResponseID.String()),
	)

	analysis, err := w.analysisService.AnalyzeResponse(ctx, payload.ResponseID, payload.AnalyzedBy)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// The response is gone; retrying will not bring it back.
			w.logger.Warn("response missing for analysis",
				zap.String("response_id", payload.ResponseID.String()),
			)
			return nil
		}
		return fmt.Errorf("failed to analyze response: %w", err)
	}

	w.logger.Info("transcript analysis completed",
		zap.String("response_id", payload.ResponseID.String()),
		zap.String("analysis_id", analysis.ID.String()),
		zap.Int("themes", len(analysis.Themes)),
	)

	return nil
}

// ProcessTranscriptionTask transcribes staged audio, stores the
// transcript on the response, then runs analysis over it. An empty
// transcript (including transcription failure) still produces an
// analysis row via the short-circuit path.
func (w *AnalysisWorker) ProcessTranscriptionTask(ctx context.Context, t *asynq.Task) error {
	var payload AudioTranscriptionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal transcription payload: %w", err)
	}

	w.logger.Info("processing audio transcription",
		zap.String("response_id", payload.ResponseID.String()),
		zap.String("audio_object", payload.AudioObject),
	)

	transcript := ""
	if w.minioClient != nil && payload.AudioObject != "" {
		obj, err := w.minioClient.GetObject(ctx, w.bucket, payload.AudioObject, minio.GetObjectOptions{})
		if err != nil {
			w.logger.Warn("staged audio unavailable",
				zap.String("audio_object", payload.AudioObject),
				zap.Error(err),
			)
		} else {
			defer obj.Close()
			transcript = w.analysisService.Transcribe(ctx, llm.TranscriptionRequest{
				Filename: payload.AudioObject,
				Reader:   obj,
			})
		}
	}

	if transcript != "" && w.transcripts != nil {
		if err := w.transcripts.SetTranscript(ctx, payload.ResponseID, transcript); err != nil {
			if apperrors.IsNotFound(err) {
				w.logger.Warn("response missing for transcription",
					zap.String("response_id", payload.ResponseID.String()),
				)
				return nil
			}
			return fmt.Errorf("failed to store transcript: %w", err)
		}
	}

	if _, err := w.analysisService.AnalyzeResponse(ctx, payload.ResponseID, payload.AnalyzedBy); err != nil {
		if apperrors.IsNotFound(err) {
			w.logger.Warn("response missing for transcription",
				zap.String("response_id", payload.ResponseID.String()),
			)
			return nil
		}
		return fmt.Errorf("failed to persist analysis: %w", err)
	}

	return nil
}
