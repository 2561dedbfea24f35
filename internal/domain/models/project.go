package models

import "time"

// Project is a named grouping of conversations owned by exactly one user.
// Exactly one project per user carries IsDefault; the default project is the
// fallback container for new conversations and can never be archived or
// deleted.
type Project struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	IsDefault   bool       `json:"is_default" db:"is_default"`
	IsArchived  bool       `json:"is_archived" db:"is_archived"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// DefaultProjectName is the name given to lazily created default projects.
const DefaultProjectName = "My Conversations"
