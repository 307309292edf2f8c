package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles assignable to a user account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an authenticated customer.
type User struct {
	BaseModel
	FirstName       string         `json:"first_name"`
	LastName        string         `json:"last_name"`
	Email           string         `gorm:"uniqueIndex" json:"email"`
	Phone           string         `json:"phone"`
	PasswordHash    string         `json:"-"`
	Role            string         `gorm:"default:user" json:"role"`
	NewsletterOptIn bool           `json:"newsletter_opt_in"`
	Addresses       []UserAddress  `json:"addresses,omitempty"`
	Orders          []Order        `json:"orders,omitempty"`
	WishlistItems   []WishlistItem `json:"wishlist_items,omitempty"`
}

// UserAddress is a saved shipping/billing address.
type UserAddress struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Label     string    `json:"label"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Pincode   string    `json:"pincode"`
	IsDefault bool      `json:"is_default"`
}

// PasswordResetToken tracks outstanding password-reset requests.
type PasswordResetToken struct {
	BaseModel
	Email     string     `gorm:"index" json:"email"`
	Token     string     `gorm:"uniqueIndex" json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
}
