package models

import "time"

// Role represents a named permission category that can be assigned to zero
// or more profiles. Roles are append-only in practice: administrators create
// them through the admin area and nothing updates or deletes them. The
// "user" and "admin" roles are seeded at bootstrap.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the unique name of the role (e.g., "admin", "user").
	// Names are normalized to lowercase at the store boundary.
	Name string `gorm:"unique;size:50;not null"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}
