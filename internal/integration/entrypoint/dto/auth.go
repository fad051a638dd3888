// Package dto defines data transfer objects for API requests and responses.
package dto

// AuthRequest represents the request body for registration and login.
// Field presence is validated in the use cases so empty submissions produce
// the documented message instead of a binding error.
type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse represents the response for successful authentication.
type TokenResponse struct {
	Token string `json:"token"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Msg  string `json:"msg"`
	Code string `json:"code,omitempty"`
}
