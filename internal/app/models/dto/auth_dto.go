package dto

// LoginRequest represents mentor login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"mentor@college.edu"`
	Password string `json:"password" binding:"required" example:"secret"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"Bearer"`
	ExpiresIn   int64  `json:"expires_in" example:"86400"`
}

// OAuthUser is the user block posted back to the opener after Google sign-in
type OAuthUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// OAuthResult is the message posted to the opener window
type OAuthResult struct {
	Type        string     `json:"type" example:"AUTH_SUCCESS"`
	AccessToken string     `json:"access_token,omitempty"`
	User        *OAuthUser `json:"user,omitempty"`
	Error       string     `json:"error,omitempty"`
}
