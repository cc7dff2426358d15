package organization

import (
	"context"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/organization"
	"github.com/roofpo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DivisionService handles division business operations
type DivisionService struct {
	divisionRepo organization.DivisionRepository
	logger       *zap.Logger
}

// NewDivisionService creates a new DivisionService
func NewDivisionService(divisionRepo organization.DivisionRepository, logger *zap.Logger) *DivisionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DivisionService{divisionRepo: divisionRepo, logger: logger}
}

// Create creates a new division
func (s *DivisionService) Create(ctx context.Context, req CreateDivisionRequest) (*DivisionResponse, error) {
	division, err := organization.NewDivision(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	exists, err := s.divisionRepo.ExistsByCode(ctx, division.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Division with this code already exists")
	}

	if req.Description != "" {
		if err := division.Update(division.Name, req.Description); err != nil {
			return nil, err
		}
		division.Version = 1
	}

	if err := s.divisionRepo.Save(ctx, division); err != nil {
		return nil, err
	}
	s.logger.Info("Division created", zap.String("code", division.Code))

	response := ToDivisionResponse(division)
	return &response, nil
}

// GetByID retrieves a division by ID
func (s *DivisionService) GetByID(ctx context.Context, id uuid.UUID) (*DivisionResponse, error) {
	division, err := s.divisionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToDivisionResponse(division)
	return &response, nil
}

// List retrieves divisions with pagination
func (s *DivisionService) List(ctx context.Context, filter shared.Filter) ([]DivisionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}

	divisions, total, err := s.divisionRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]DivisionResponse, len(divisions))
	for i := range divisions {
		out[i] = ToDivisionResponse(&divisions[i])
	}
	return out, total, nil
}

// Update changes a division's name or description
func (s *DivisionService) Update(ctx context.Context, id uuid.UUID, req UpdateDivisionRequest) (*DivisionResponse, error) {
	division, err := s.divisionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name, description := division.Name, division.Description
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if err := division.Update(name, description); err != nil {
		return nil, err
	}
	if err := s.divisionRepo.Save(ctx, division); err != nil {
		return nil, err
	}
	response := ToDivisionResponse(division)
	return &response, nil
}

// Deactivate stops new work in the division
func (s *DivisionService) Deactivate(ctx context.Context, id uuid.UUID) (*DivisionResponse, error) {
	return s.setActive(ctx, id, false)
}

// Activate re-enables a division
func (s *DivisionService) Activate(ctx context.Context, id uuid.UUID) (*DivisionResponse, error) {
	return s.setActive(ctx, id, true)
}

func (s *DivisionService) setActive(ctx context.Context, id uuid.UUID, active bool) (*DivisionResponse, error) {
	division, err := s.divisionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		division.Activate()
	} else if err := division.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.divisionRepo.Save(ctx, division); err != nil {
		return nil, err
	}
	s.logger.Info("Division status changed",
		zap.String("code", division.Code),
		zap.Bool("active", division.Active))

	response := ToDivisionResponse(division)
	return &response, nil
}
