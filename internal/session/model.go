package session

import "time"

// User is the profile record returned by the backend.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"created_at"`
	IsActive      bool      `json:"is_active"`
	IsPremium     bool      `json:"is_premium"`
	ImageCredits  int       `json:"image_credits"`
	FreeTrialUsed bool      `json:"free_trial_used"`
}

// Session is an immutable snapshot of the authentication state. Token and
// User are always set and cleared together.
type Session struct {
	Token string
	User  *User
}

// Authenticated reports whether both a token and a user profile are present.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Premium reports whether the session belongs to a premium user.
func (s Session) Premium() bool {
	return s.User != nil && s.User.IsPremium
}
