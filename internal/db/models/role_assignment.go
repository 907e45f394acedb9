package models

import "time"

// RoleAssignment represents the many-to-many relationship between profiles
// and roles. The composite primary key makes the (profile, role) pair unique,
// a profile cannot hold the same role twice. Assignments have no independent
// meaning: when either endpoint is deleted the row cascades away.
type RoleAssignment struct {
	// ProfileID is the id of the profile in this assignment.
	ProfileID string `gorm:"primaryKey;size:36;column:profile_id"`
	// RoleID is the id of the role in this assignment.
	RoleID uint `gorm:"primaryKey;column:role_id"`
	// Profile is the associated profile (loaded via foreign key).
	Profile Profile `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the role was assigned (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the RoleAssignment model.
// This overrides GORM's default pluralized table naming.
func (RoleAssignment) TableName() string {
	return "role_assignments"
}
