package models

import "encoding/json"

// APIResponse is the envelope every remote endpoint answers with
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Count   int             `json:"count,omitempty"`
}

// ErrorMessage returns the service-provided failure text, if any
func (r *APIResponse) ErrorMessage() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Error
}

// LoginRequest holds login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the body returned by the login endpoint
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    User   `json:"user"`
	Message string `json:"message,omitempty"`
}
