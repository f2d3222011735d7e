package service

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/mingree-backend/internal/models"
)

// Actor - пользователь, от имени которого выполняется операция.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// IsAdmin сообщает, что действие выполняет администратор.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// owns проверяет владельца ресурса, администратору доступно всё.
func (a Actor) owns(ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.ID == ownerID
}
