package services

import (
	"strings"

	"github.com/google/uuid"

	"screw-inspection/domain/models"
)

// Actor is the authenticated caller as captured from the session token.
type Actor struct {
	ID       uuid.UUID
	Username string
	Role     models.Role
	Team     string
	IP       string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// ActorRef returns a pointer to the actor id, or nil for system actions.
func (a Actor) ActorRef() *uuid.UUID {
	if a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}

// VisibleTeam returns the team the actor may read. Admins may pick any team;
// everyone else is pinned to their own.
func (a Actor) VisibleTeam(requested string) string {
	requested = strings.TrimSpace(requested)
	if a.IsAdmin() && requested != "" {
		return requested
	}
	if a.Team == "" {
		return models.DefaultTeam
	}
	return a.Team
}
