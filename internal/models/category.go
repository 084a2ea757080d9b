package models

import (
	"time"

	"github.com/google/uuid"
)

// Category labels transactions. Categories without an owner are global and
// visible to every user.
type Category struct {
	ID        uuid.UUID       `json:"id"`
	UserID    *uuid.UUID      `json:"user_id"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	Icon      *string         `json:"icon"`
	Color     *string         `json:"color"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

func (c Category) IsGlobal() bool {
	return c.UserID == nil
}

// OwnedBy reports whether the category is a user's own (not global).
func (c Category) OwnedBy(userID uuid.UUID) bool {
	return c.UserID != nil && *c.UserID == userID
}

// VisibleTo reports whether userID can reference the category.
func (c Category) VisibleTo(userID uuid.UUID) bool {
	return c.IsGlobal() || c.OwnedBy(userID)
}
