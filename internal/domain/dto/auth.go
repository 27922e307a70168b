package dto

import "strings"

// SignupRequest accepts the email either as "email" or as the legacy "username" field.
type SignupRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username" validate:"required_without=Email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"`
}

func (r *SignupRequest) Identity() string {
	return identity(r.Email, r.Username)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username" validate:"required_without=Email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Identity() string {
	return identity(r.Email, r.Username)
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
	Plan        string `json:"plan"`
	UserName    string `json:"userName"`
}

func identity(email, username string) string {
	if email = strings.TrimSpace(email); email != "" {
		return strings.ToLower(email)
	}
	return strings.ToLower(strings.TrimSpace(username))
}
