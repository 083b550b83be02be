package domain

import "time"

// Principal is the authenticated identity attached to a single request.
type Principal struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Session is the server-side record stored at session:<id>. The principal
// fields are a snapshot taken at login and are never live-joined to the user.
type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether reference lies strictly after ExpiresAt.
func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return reference.After(s.ExpiresAt)
}

func (s *Session) Principal() Principal {
	return Principal{
		UserID:   s.UserID,
		Username: s.Username,
		Role:     s.Role,
	}
}
