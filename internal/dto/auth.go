package dto

import "github.com/noah-isme/edubuild-api/internal/models"

// SignupRequest registers a new account. AdminSecret is only checked when
// Role is admin.
type SignupRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	School      string `json:"school" validate:"max=200"`
	State       string `json:"state" validate:"max=120"`
	Role        string `json:"role" validate:"omitempty,oneof=student admin"`
	AdminSecret string `json:"adminSecret"`
	IP          string `json:"-"`
	UserAgent   string `json:"-"`
}

// SigninRequest authenticates an existing account.
type SigninRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// AuthResponse carries the issued session token and the account.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}
