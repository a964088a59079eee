package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued tokens and user info.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         UserInfo  `json:"user"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RefreshTokenResponse returns the refreshed tokens.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// ChangePasswordRequest payload for updating password.
type ChangePasswordRequest struct {
	OldPassword string `json:"senha_atual" validate:"required"`
	NewPassword string `json:"nova_senha" validate:"required,min=6"`
}

// ResetPasswordRequest payload for initiating the forgot-password flow.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ConfirmResetPasswordRequest completes the reset flow.
type ConfirmResetPasswordRequest struct {
	UID         string `json:"uid" validate:"required"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"nova_senha" validate:"required,min=6"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"nome_completo"`
	Role     UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"nome_completo"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller identity, decided once at the HTTP
// boundary and threaded explicitly through service calls.
type Principal struct {
	UserID string
	Email  string
	Role   UserRole
}

// IsAluno reports whether the principal carries the student role.
func (p Principal) IsAluno() bool { return p.Role == RoleAluno }

// IsProfessor reports whether the principal carries the professor role.
func (p Principal) IsProfessor() bool { return p.Role == RoleProfessor }

// IsAdmin reports whether the principal is a CCA coordinator.
func (p Principal) IsAdmin() bool { return p.Role == RoleCCA }

// PrincipalFromClaims builds the explicit principal from validated claims.
func PrincipalFromClaims(claims *JWTClaims) Principal {
	if claims == nil {
		return Principal{}
	}
	return Principal{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
}
