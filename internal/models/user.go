package models

import "time"

// Role gates which actions an acting user may issue. The store itself
// never checks roles; policy is applied at the HTTP boundary.
type Role string

const (
	RoleOwner  Role = "Owner"
	RoleFamily Role = "Family"
	RoleChild  Role = "Child"
	RoleMinor  Role = "Minor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleFamily, RoleChild, RoleMinor:
		return true
	}
	return false
}

// User is read-only from the task store's perspective; the family roster
// is seeded at startup.
type User struct {
	ID        string    `gorm:"primarykey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Role      Role      `gorm:"type:varchar(10);not null" json:"role"`
	CreatedAt time.Time `json:"-"`
}
