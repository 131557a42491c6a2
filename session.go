package aware

// AuthResponse is the backend's reply to login, signup, and refresh: a fresh
// access/refresh token pair with its lifetime.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
	TokenType    string `json:"token_type,omitempty"`
}

// ConfirmResult reports the outcome of an email confirmation attempt. It is a
// value, not an error: confirmation failure is an expected flow, and the
// caller always has a definite branch.
type ConfirmResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type confirmRequest struct {
	Token string `json:"token"`
}

type logoutResponse struct {
	Success bool `json:"success"`
}
