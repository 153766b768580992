package user

import "time"

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profile_picture"`
	PasswordHash   string    `json:"-"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PublicProfile is what other users may see.
type PublicProfile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Username: u.Username, ProfilePicture: u.ProfilePicture, CreatedAt: u.CreatedAt}
}

// ProfileUpdate lists the fields a profile edit may change. Nil fields keep
// their current value.
type ProfileUpdate struct {
	Username       *string
	Email          *string
	ProfilePicture *string
}
