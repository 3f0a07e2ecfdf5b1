package users

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleVenueManager Role = "VENUE_MANAGER"
	RoleCoordinator  Role = "COORDINATOR"
	RoleUser         Role = "USER"
)

// User is either a registered account or a guest purchaser. Guests have no
// password and cannot log in until they register with the same email.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string    `json:"name" gorm:"not null;size:255"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Phone     string    `json:"phone" gorm:"size:32"`
	Password  *string   `json:"-"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:'USER'"`
	IsGuest   bool      `json:"is_guest" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasCredential reports whether the account can authenticate with a password.
func (u *User) HasCredential() bool {
	return u.Password != nil && *u.Password != "" && !u.IsGuest
}

func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleAdmin, RoleVenueManager, RoleCoordinator, RoleUser:
		return true
	default:
		return false
	}
}

// IsStaff reports whether role may operate events and gates.
func IsStaff(role string) bool {
	switch Role(role) {
	case RoleAdmin, RoleVenueManager, RoleCoordinator:
		return true
	default:
		return false
	}
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GuestProfile is the purchaser identity carried by an anonymous booking.
type GuestProfile struct {
	Name  string
	Email string
	Phone string
}

// Actor is the authenticated caller of a management operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManage reports whether the actor may modify a resource owned by ownerID.
// Admins manage everything; venue managers only what they created.
func (a Actor) CanManage(ownerID uuid.UUID) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role == RoleVenueManager && a.ID == ownerID
}
