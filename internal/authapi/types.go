package authapi

// AuthResponse is the authenticate payload from the upstream auth service.
// On failure Success is false and Message carries the human-readable reason;
// the gateway forwards that message verbatim to the login form.
type AuthResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	Role         string `json:"role,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	Email        string `json:"email,omitempty"`
	Username     string `json:"username,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshResponse is the token pair returned by the refresh endpoint.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
