package models

import "time"

// Profile represents the mutable display attributes of a registered user.
// Exactly one Profile exists per authenticated identity; the row is created
// by the sign-up bootstrap the moment an identity is registered and shares
// the identity's id. Profiles are never hard-deleted by application code,
// deletion cascades from identity removal.
type Profile struct {
	// ID is the identity id this profile belongs to (UUID string).
	ID string `gorm:"primaryKey;size:36"`
	// Username is the unique display handle. Optional; NULL when unset so the
	// unique index only applies to profiles that chose a handle.
	Username *string `gorm:"uniqueIndex;size:30"`
	// FullName is the user's display name.
	FullName string `gorm:"size:100"`
	// AvatarURL is the durable object storage reference for the avatar image.
	// Only the reference string is stored here; upload/delete happens against
	// the object storage provider.
	AvatarURL string `gorm:"size:512"`
	// Bio is a free-text self description.
	Bio string `gorm:"size:500"`
	// Location is a free-text location.
	Location string `gorm:"size:100"`
	// Website is an optional URL.
	Website string `gorm:"size:255"`
	// CreatedAt is the timestamp when the profile was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the profile was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Profile model.
// This overrides GORM's default pluralized table naming.
func (Profile) TableName() string {
	return "profiles"
}
