package identity

import (
	"slices"

	"github.com/google/uuid"
)

// Actor is the authenticated user a service call runs on behalf of
type Actor struct {
	UserID      uuid.UUID
	Role        Role
	LeaderID    string
	DivisionIDs []uuid.UUID
}

// ActorFromUser builds the actor for a loaded user
func ActorFromUser(u *User) Actor {
	return Actor{
		UserID:      u.ID,
		Role:        u.Role,
		LeaderID:    u.LeaderID,
		DivisionIDs: slices.Clone(u.DivisionIDs),
	}
}

// HasPermission reports whether the actor's role grants the permission
func (a Actor) HasPermission(permission string) bool {
	return a.Role.HasPermission(permission)
}

// CanAccessDivision reports whether records of the division are visible to the actor
func (a Actor) CanAccessDivision(divisionID uuid.UUID) bool {
	if a.Role.SeesAllDivisions() {
		return true
	}
	return slices.Contains(a.DivisionIDs, divisionID)
}

// DivisionScope returns the division IDs list queries must be limited to.
// Nil means unrestricted. A scoped actor without divisions gets uuid.Nil so
// IN-clauses match nothing.
func (a Actor) DivisionScope() []uuid.UUID {
	if a.Role.SeesAllDivisions() {
		return nil
	}
	if len(a.DivisionIDs) == 0 {
		return []uuid.UUID{uuid.Nil}
	}
	return slices.Clone(a.DivisionIDs)
}
