package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/organization"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/roofpo/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// UserService handles user management operations
type UserService struct {
	userRepo     identity.UserRepository
	divisionRepo organization.DivisionRepository
	blacklist    auth.TokenBlacklist
	jwtService   *auth.JWTService
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	divisionRepo organization.DivisionRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:     userRepo,
		divisionRepo: divisionRepo,
		jwtService:   jwtService,
		blacklist:    blacklist,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	s.logger.Info("Creating new user",
		zap.String("email", email),
		zap.String("role", input.Role))

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to check email existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check email availability")
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_EXISTS", "Email already exists")
	}

	user, err := identity.NewUser(email, input.DisplayName, input.Password, identity.Role(strings.ToUpper(input.Role)))
	if err != nil {
		return nil, err
	}

	if input.LeaderID != "" {
		if err := s.assignLeaderID(ctx, user, input.LeaderID); err != nil {
			return nil, err
		}
	}
	if len(input.DivisionIDs) > 0 {
		if err := s.assignDivisions(ctx, user, input.DivisionIDs); err != nil {
			return nil, err
		}
	}
	user.Version = 1

	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("EMAIL_EXISTS", "Email or leader ID already in use")
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create user")
	}
	s.publish(ctx, user)

	if user.Role.NeedsLeaderID() && user.LeaderID == "" {
		s.logger.Info("User has no leader ID and cannot raise purchase orders yet",
			zap.String("user_id", user.ID.String()))
	}
	s.logger.Info("User created successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	dto := ToUserDTO(user)
	return &dto, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// List retrieves a paginated list of users
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserDTO, int64, error) {
	domainFilter := identity.UserFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			Search:   filter.Search,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		Role:       identity.Role(strings.ToUpper(filter.Role)),
		DivisionID: filter.DivisionID,
		Active:     filter.Active,
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "display_name"
		domainFilter.OrderDir = "asc"
	}

	users, total, err := s.userRepo.FindAll(ctx, domainFilter)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, 0, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}

	out := make([]UserDTO, len(users))
	for i := range users {
		out[i] = ToUserDTO(&users[i])
	}
	return out, total, nil
}

// Update changes a user's name, role, leader ID or divisions. Role and division
// changes sign the user out so new tokens carry the new scope.
func (s *UserService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	scopeChanged := false
	if input.DisplayName != nil {
		if err := user.SetDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}
	if input.Role != nil {
		role := identity.Role(strings.ToUpper(*input.Role))
		if role != user.Role {
			if user.ID == actor.UserID {
				return nil, shared.NewDomainError("CANNOT_CHANGE_OWN_ROLE", "You cannot change your own role")
			}
			if err := user.ChangeRole(role); err != nil {
				return nil, err
			}
			scopeChanged = true
		}
	}
	if input.LeaderID != nil && strings.ToUpper(strings.TrimSpace(*input.LeaderID)) != user.LeaderID {
		if err := s.assignLeaderID(ctx, user, *input.LeaderID); err != nil {
			return nil, err
		}
		scopeChanged = true
	}
	if input.DivisionIDs != nil {
		if err := s.assignDivisions(ctx, user, *input.DivisionIDs); err != nil {
			return nil, err
		}
		scopeChanged = true
	}

	if err := s.save(ctx, user, "Failed to update user"); err != nil {
		return nil, err
	}
	if scopeChanged {
		s.invalidateSessions(ctx, user.ID)
	}

	s.logger.Info("User updated",
		zap.String("user_id", id.String()),
		zap.Bool("scope_changed", scopeChanged))

	dto := ToUserDTO(user)
	return &dto, nil
}

// Activate activates a user
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Activate(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, user, "Failed to activate user"); err != nil {
		return nil, err
	}

	s.logger.Info("User activated", zap.String("user_id", id.String()))

	dto := ToUserDTO(user)
	return &dto, nil
}

// Deactivate blocks the user from signing in and revokes their tokens
func (s *UserService) Deactivate(ctx context.Context, actor identity.Actor, id uuid.UUID) (*UserDTO, error) {
	if id == actor.UserID {
		return nil, shared.NewDomainError("CANNOT_DEACTIVATE_SELF", "You cannot deactivate your own account")
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, user, "Failed to deactivate user"); err != nil {
		return nil, err
	}
	s.invalidateSessions(ctx, user.ID)

	s.logger.Info("User deactivated", zap.String("user_id", id.String()))

	dto := ToUserDTO(user)
	return &dto, nil
}

// ResetPassword sets a new password without the old one and signs the user out
func (s *UserService) ResetPassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	if err := s.save(ctx, user, "Failed to reset password"); err != nil {
		return err
	}
	s.invalidateSessions(ctx, user.ID)

	s.logger.Info("User password reset", zap.String("user_id", id.String()))
	return nil
}

func (s *UserService) find(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		s.logger.Error("Failed to find user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}
	return user, nil
}

func (s *UserService) save(ctx context.Context, user *identity.User, failure string) error {
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return shared.NewDomainError("LEADER_ID_EXISTS", "Leader ID is already assigned to another user")
		}
		s.logger.Error(failure, zap.String("user_id", user.ID.String()), zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", failure)
	}
	s.publish(ctx, user)
	return nil
}

// assignLeaderID enforces that a leader code belongs to one user only
func (s *UserService) assignLeaderID(ctx context.Context, user *identity.User, leaderID string) error {
	if err := user.SetLeaderID(leaderID); err != nil {
		return err
	}
	if user.LeaderID == "" {
		return nil
	}
	taken, err := s.userRepo.ExistsByLeaderID(ctx, user.LeaderID, user.ID)
	if err != nil {
		s.logger.Error("Failed to check leader ID", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to check leader ID availability")
	}
	if taken {
		return shared.NewDomainError("LEADER_ID_EXISTS", "Leader ID is already assigned to another user")
	}
	return nil
}

func (s *UserService) assignDivisions(ctx context.Context, user *identity.User, divisionIDs []uuid.UUID) error {
	for _, id := range divisionIDs {
		if _, err := s.divisionRepo.FindByID(ctx, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("DIVISION_NOT_FOUND", "Division not found: "+id.String())
			}
			return err
		}
	}
	return user.SetDivisions(divisionIDs)
}

func (s *UserService) invalidateSessions(ctx context.Context, userID uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, userID.String(), s.jwtService.GetRefreshTokenExpiration()); err != nil {
		s.logger.Warn("Failed to invalidate user sessions",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
}

func (s *UserService) publish(ctx context.Context, user *identity.User) {
	events := user.PullDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish user events",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}
}
