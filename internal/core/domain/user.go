package domain

import (
	"errors"
	"time"
)

// Operator roles of the admin API. These gate HTTP routes and are unrelated
// to the on-chain supply-chain roles.
const (
	OperatorAdmin  = "admin"
	OperatorViewer = "viewer"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
)

// User is an operator account of the admin API. Wallet is the address whose
// on-chain admin role authorizes role changes made by this operator.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Wallet       string    `json:"wallet,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
