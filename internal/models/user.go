package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is a registered author/reader account.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Password  string    `json:"-"` // bcrypt hash, never serialized
	CreatedAt time.Time `json:"created_at"`
}

// SignupForm is the form payload for /auth/signup/.
type SignupForm struct {
	Username string `form:"username" validate:"required,alphanum,min=2,max=50"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
}

// LoginForm is the form payload for /auth/login/.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

// SessionClaims are custom claims extending standard jwt.RegisteredClaims,
// carried in the session cookie.
type SessionClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
