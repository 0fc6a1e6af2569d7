package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	apperrors "github.com/decisiontrace/decisiontrace/internal/pkg/errors"
)

// ScenarioService handles scenario authoring operations
type ScenarioService struct {
	scenarioRepo ScenarioRepository
}

// NewScenarioService creates a new scenario service
func NewScenarioService(scenarioRepo ScenarioRepository) *ScenarioService {
	return &ScenarioService{scenarioRepo: scenarioRepo}
}

// Create creates a new scenario. Option ids must be unique within the
// scenario since responses reference options by id.
func (s *ScenarioService) Create(ctx context.Context, input *domain.ScenarioInput) (*domain.Scenario, error) {
	if err := validateOptions(input.Options); err != nil {
		return nil, err
	}

	scenario := &domain.Scenario{
		ID:            uuid.New(),
		Title:         input.Title,
		Category:      input.Category,
		Description:   input.Description,
		Context:       input.Context,
		DecisionPoint: input.DecisionPoint,
		Options:       input.Options,
		Metadata:      input.Metadata,
		CreatedAt:     time.Now().UTC(),
		IsActive:      true,
	}

	if err := s.scenarioRepo.Create(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to create scenario: %w", err)
	}

	return scenario, nil
}

// Get retrieves an active scenario by ID
func (s *ScenarioService) Get(ctx context.Context, id uuid.UUID) (*domain.Scenario, error) {
	return s.scenarioRepo.GetByID(ctx, id)
}

// List retrieves active scenarios with filtering and pagination
func (s *ScenarioService) List(ctx context.Context, filter *domain.ScenarioFilter, limit, offset int) (*domain.ScenarioList, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.scenarioRepo.List(ctx, filter, limit, offset)
}

// Update applies partial updates to a scenario
func (s *ScenarioService) Update(ctx context.Context, id uuid.UUID, input *domain.ScenarioUpdateInput) (*domain.Scenario, error) {
	if input.Options != nil {
		if len(input.Options) < 2 {
			return nil, apperrors.Validation("scenario needs at least two options")
		}
		if err := validateOptions(input.Options); err != nil {
			return nil, err
		}
	}

	if err := s.scenarioRepo.Update(ctx, id, input); err != nil {
		return nil, err
	}
	return s.scenarioRepo.GetByID(ctx, id)
}

// Delete soft-deletes a scenario so past responses keep resolving
func (s *ScenarioService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.scenarioRepo.SoftDelete(ctx, id)
}

func validateOptions(options []domain.ScenarioOption) error {
	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		if opt.ID == "" {
			return apperrors.Validation("option id must not be empty")
		}
		if _, ok := seen[opt.ID]; ok {
			return apperrors.Validation(fmt.Sprintf("duplicate option id %q", opt.ID))
		}
		seen[opt.ID] = struct{}{}
	}
	return nil
}
