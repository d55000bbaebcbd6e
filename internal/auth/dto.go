package auth

import (
	"github.com/adityaraut/dairydrop-backend/internal/users"
)

// RegisterRequest captures the payload for creating a customer account.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6,max=128"`
	FullName string  `json:"fullName" validate:"required,min=2,max=191"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=7,max=32"`
}

// LoginRequest captures the user credentials sent to the signin endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required,min=20"`
}

// SignoutRequest optionally narrows the signout to a single session.
// Without a token every session of the user is revoked.
type SignoutRequest struct {
	RefreshToken *string `json:"refreshToken,omitempty"`
}

// TokenResponse contains the token pair and user produced by a successful
// register, signin, or refresh.
type TokenResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	TokenType    string         `json:"tokenType"`
	User         *users.UserDTO `json:"user"`
}

// ClientMeta carries request attribution stored alongside each session.
type ClientMeta struct {
	UserAgent *string
	IPAddress *string
}
