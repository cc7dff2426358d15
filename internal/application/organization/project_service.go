package organization

import (
	"context"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/organization"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/shared"
)

// ProjectService handles project business operations
type ProjectService struct {
	projectRepo  organization.ProjectRepository
	divisionRepo organization.DivisionRepository
	orderRepo    procurement.PurchaseOrderRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo organization.ProjectRepository,
	divisionRepo organization.DivisionRepository,
	orderRepo procurement.PurchaseOrderRepository,
) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		divisionRepo: divisionRepo,
		orderRepo:    orderRepo,
	}
}

// Create opens a project in one of the actor's divisions
func (s *ProjectService) Create(ctx context.Context, actor identity.Actor, req CreateProjectRequest) (*ProjectResponse, error) {
	if !actor.CanAccessDivision(req.DivisionID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Projects can only be opened in your own divisions")
	}
	division, err := s.divisionRepo.FindByID(ctx, req.DivisionID)
	if err != nil {
		return nil, err
	}
	if !division.Active {
		return nil, shared.NewDomainError("INVALID_STATE", "Division is inactive")
	}

	project, err := organization.NewProject(division.ID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	exists, err := s.projectRepo.ExistsByCode(ctx, project.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Project with this code already exists")
	}

	if req.CustomerName != "" || req.SiteAddress != "" {
		if err := project.Update(project.Name, req.CustomerName, req.SiteAddress); err != nil {
			return nil, err
		}
		project.Version = 1
	}

	if err := s.projectRepo.Save(ctx, project); err != nil {
		return nil, err
	}
	response := ToProjectResponse(project)
	return &response, nil
}

// GetByID retrieves a project visible to the actor
func (s *ProjectService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*ProjectResponse, error) {
	project, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	response := ToProjectResponse(project)
	return &response, nil
}

// List retrieves the projects of the actor's divisions
func (s *ProjectService) List(ctx context.Context, actor identity.Actor, filter ProjectListFilter) ([]ProjectResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	scope := actor.DivisionScope()
	if filter.DivisionID != nil {
		if !actor.CanAccessDivision(*filter.DivisionID) {
			return []ProjectResponse{}, 0, nil
		}
		scope = []uuid.UUID{*filter.DivisionID}
	}

	projects, total, err := s.projectRepo.FindAll(ctx, organization.ProjectFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
			Search:   filter.Search,
		},
		DivisionIDs: scope,
		Status:      filter.Status,
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProjectResponse, len(projects))
	for i := range projects {
		out[i] = ToProjectResponse(&projects[i])
	}
	return out, total, nil
}

// Update changes a project's details or status
func (s *ProjectService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	project, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.CustomerName != nil || req.SiteAddress != nil {
		name, customer, site := project.Name, project.CustomerName, project.SiteAddress
		if req.Name != nil {
			name = *req.Name
		}
		if req.CustomerName != nil {
			customer = *req.CustomerName
		}
		if req.SiteAddress != nil {
			site = *req.SiteAddress
		}
		if err := project.Update(name, customer, site); err != nil {
			return nil, err
		}
	}
	if req.Status != nil && *req.Status != project.Status {
		if err := project.SetStatus(*req.Status); err != nil {
			return nil, err
		}
	}

	if err := s.projectRepo.Save(ctx, project); err != nil {
		return nil, err
	}
	response := ToProjectResponse(project)
	return &response, nil
}

// Delete removes a project that never had a purchase order
func (s *ProjectService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	project, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	_, count, err := s.orderRepo.FindAll(ctx, procurement.PurchaseOrderFilter{
		Filter:          shared.Filter{Page: 1, PageSize: 1},
		ProjectID:       &project.ID,
		IncludeArchived: true,
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("INVALID_STATE", "Projects with purchase orders cannot be deleted")
	}
	return s.projectRepo.Delete(ctx, project.ID)
}

func (s *ProjectService) load(ctx context.Context, actor identity.Actor, id uuid.UUID) (*organization.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessDivision(project.DivisionID) {
		return nil, shared.ErrNotFound
	}
	return project, nil
}
