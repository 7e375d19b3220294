package domain

import "time"

// Session is server-side proof of authentication bound to one user.
type Session struct {
	ID        string
	UserID    int64
	Role      Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	ID        int64
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}
