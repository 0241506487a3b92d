package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"gorm.io/gorm"
)

// User is a staff account
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Email       string         `gorm:"size:255;unique;not null" json:"email"`
	Password    string         `gorm:"size:255" json:"-"`
	Role        enum.UserRole  `gorm:"size:20;not null;default:'reception'" json:"role"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// Principal is the authenticated staff member performing an operation
type Principal struct {
	UserID uuid.UUID     `json:"user_id"`
	Email  string        `json:"email"`
	Role   enum.UserRole `json:"role"`
}

// IsAdmin reports whether the principal may manage catalog and promotions
func (p Principal) IsAdmin() bool {
	return p.Role == enum.UserRoleAdmin
}

// SystemPrincipal is used by seeders and background jobs
var SystemPrincipal = Principal{Email: "system", Role: enum.UserRoleAdmin}
