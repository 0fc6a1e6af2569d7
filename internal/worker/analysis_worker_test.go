package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTranscriptAnalysisTask(t *testing.T) {
	payload := &TranscriptAnalysisPayload{
		ResponseID: uuid.New(),
		AnalyzedBy: "worker@test.local",
	}

	task, err := NewTranscriptAnalysisTask(payload)
	require.NoError(t, err)
	assert.Equal(t, TypeTranscriptAnalysis, task.Type())

	var decoded TranscriptAnalysisPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, payload.ResponseID, decoded.ResponseID)
	assert.Equal(t, payload.AnalyzedBy, decoded.AnalyzedBy)
}

func TestNewAudioTranscriptionTask(t *testing.T) {
	payload := &AudioTranscriptionPayload{
		ResponseID:  uuid.New(),
		AudioObject: "staging/thinkaloud.webm",
		AnalyzedBy:  "worker@test.local",
	}

	task, err := NewAudioTranscriptionTask(payload)
	require.NoError(t, err)
	assert.Equal(t, TypeAudioTranscription, task.Type())

	var decoded AudioTranscriptionPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, payload.AudioObject, decoded.AudioObject)
}

func TestAnalysisWorker_InvalidPayload(t *testing.T) {
	worker := NewAnalysisWorker(zap.NewNop(), nil, nil, nil, "")

	task := asynq.NewTask(TypeTranscriptAnalysis, []byte("not json"))
	err := worker.ProcessTask(context.Background(), task)
	assert.Error(t, err)

	task = asynq.NewTask(TypeAudioTranscription, []byte("{broken"))
	err = worker.ProcessTranscriptionTask(context.Background(), task)
	assert.Error(t, err)
}

func TestNewSessionExportTask(t *testing.T) {
	payload := &SessionExportPayload{
		SessionID:   uuid.New(),
		RequestedBy: "operator@test.local",
	}

	task, err := NewSessionExportTask(payload)
	require.NoError(t, err)
	assert.Equal(t, TypeSessionExport, task.Type())

	var decoded SessionExportPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, payload.SessionID, decoded.SessionID)
}

func TestExportWorker_InvalidPayload(t *testing.T) {
	worker := NewExportWorker(zap.NewNop(), nil, nil, "exports")

	task := asynq.NewTask(TypeSessionExport, []byte("not json"))
	err := worker.ProcessTask(context.Background(), task)
	assert.Error(t, err)
}
