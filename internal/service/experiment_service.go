package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	apperrors "github.com/decisiontrace/decisiontrace/internal/pkg/errors"
)

// ExperimentService handles experiment operations
type ExperimentService struct {
	experimentRepo ExperimentRepository
	scenarioRepo   ScenarioRepository
}

// NewExperimentService creates a new experiment service
func NewExperimentService(experimentRepo ExperimentRepository, scenarioRepo ScenarioRepository) *ExperimentService {
	return &ExperimentService{
		experimentRepo: experimentRepo,
		scenarioRepo:   scenarioRepo,
	}
}

// Create creates a new experiment. Every scenario in the sequence must
// exist; the sequence is immutable afterwards.
func (s *ExperimentService) Create(ctx context.Context, input *domain.ExperimentInput) (*domain.Experiment, error) {
	unique := make(map[uuid.UUID]struct{}, len(input.ScenarioSequence))
	ids := make([]uuid.UUID, 0, len(input.ScenarioSequence))
	for _, id := range input.ScenarioSequence {
		if _, ok := unique[id]; ok {
			continue
		}
		unique[id] = struct{}{}
		ids = append(ids, id)
	}

	scenarios, err := s.scenarioRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scenarios: %w", err)
	}
	for _, id := range ids {
		scenario, ok := scenarios[id]
		if !ok {
			return nil, apperrors.InvalidInput(fmt.Sprintf("scenario %s does not exist", id))
		}
		if !scenario.IsActive {
			return nil, apperrors.InvalidInput(fmt.Sprintf("scenario %s is not active", id))
		}
	}

	experiment := &domain.Experiment{
		ID:               uuid.New(),
		Name:             input.Name,
		Description:      input.Description,
		ScenarioSequence: input.ScenarioSequence,
		Config:           input.Config,
		CreatedBy:        input.CreatedBy,
		CreatedAt:        time.Now().UTC(),
		IsActive:         true,
	}

	if err := s.experimentRepo.Create(ctx, experiment); err != nil {
		return nil, fmt.Errorf("failed to create experiment: %w", err)
	}

	return experiment, nil
}

// Get retrieves an experiment by ID
func (s *ExperimentService) Get(ctx context.Context, id uuid.UUID) (*domain.Experiment, error) {
	return s.experimentRepo.GetByID(ctx, id)
}

// Deactivate stops an experiment from accepting new sessions. Existing
// sessions are unaffected.
func (s *ExperimentService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.experimentRepo.SetActive(ctx, id, false)
}

// Activate re-enables an experiment
func (s *ExperimentService) Activate(ctx context.Context, id uuid.UUID) error {
	return s.experimentRepo.SetActive(ctx, id, true)
}

// List retrieves experiments with filtering and pagination
func (s *ExperimentService) List(ctx context.Context, filter *domain.ExperimentFilter, limit, offset int) (*domain.ExperimentList, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.experimentRepo.List(ctx, filter, limit, offset)
}
