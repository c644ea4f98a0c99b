package services

import "github.com/abhishekjoshi1998/EduPayout/internal/models"

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID int64
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func (a Actor) IsMentor() bool {
	return a.Role == models.RoleMentor
}
