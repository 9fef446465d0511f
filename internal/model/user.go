package model

// Credentials represents request for POST /register and POST /login
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse represents response for POST /login and POST /register.
// Register may omit the token, in which case the user still has to log in.
type AuthResponse struct {
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// UserProfile represents response for GET /user
type UserProfile struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserSummary is one entry of GET /users
type UserSummary struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// SessionResponse represents response for GET /api/session
type SessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *UserProfile `json:"user,omitempty"`
}
