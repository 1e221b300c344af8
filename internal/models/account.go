package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role discriminates the kind of profile an account is attached to. Push-token
// lookups key off this tag instead of probing the vendor, driver and customer
// collections in turn.
type Role string

const (
	RoleVendor   Role = "vendor"
	RoleDriver   Role = "driver"
	RoleCustomer Role = "customer"
)

// Account is the login record shared by vendors, drivers and customers.
// ProfileID points at the role-specific document.
type Account struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Role          Role               `bson:"role" json:"role"`
	Email         string             `bson:"email" json:"email"`
	PasswordHash  string             `bson:"password_hash" json:"-"`
	ExpoPushToken string             `bson:"expo_push_token,omitempty" json:"-"`
	ProfileID     primitive.ObjectID `bson:"profile_id" json:"profile_id"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents an account registration request.
type RegisterRequest struct {
	Role          Role   `json:"role"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Password      string `json:"password"`
	LicenseNo     string `json:"license_no,omitempty"`
	ExpoPushToken string `json:"expo_push_token,omitempty"`
}

// LoginResponse represents a successful login response.
type LoginResponse struct {
	Token     string  `json:"token"`
	AccountID string  `json:"account_id"`
	ProfileID string  `json:"profile_id"`
	Role      Role    `json:"role"`
	Account   Account `json:"account"`
}

// Claims represents JWT claims.
type Claims struct {
	AccountID string `json:"account_id"`
	ProfileID string `json:"profile_id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Exp       int64  `json:"exp"`
}

// IsValidRole checks if a role is valid.
func IsValidRole(role Role) bool {
	switch role {
	case RoleVendor, RoleDriver, RoleCustomer:
		return true
	default:
		return false
	}
}
