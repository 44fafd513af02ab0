package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrEmailTaken       = errors.New("email already taken")
	ErrPasswordMismatch = errors.New("password does not match")
	ErrSessionExpired   = errors.New("session expired")
	ErrTokenInvalid     = errors.New("token is invalid or expired")
	ErrNotVerified      = errors.New("email not verified")
)

type User struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	// SessionEpoch only ever increases. A session token is valid while the
	// epoch it was issued at matches this value.
	SessionEpoch int64
	Followers    []string
	Following    []string
	ProfileImg   string
	CoverImg     string
	Bio          string
	Link         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the client-safe projection of a User. The password hash and
// session epoch are never serialized.
type PublicUser struct {
	ID         string   `json:"_id"`
	FullName   string   `json:"fullName"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	Followers  []string `json:"followers"`
	Following  []string `json:"following"`
	ProfileImg string   `json:"profileImg"`
	CoverImg   string   `json:"coverImg"`
}

func (u *User) Public() PublicUser {
	followers := u.Followers
	if followers == nil {
		followers = []string{}
	}
	following := u.Following
	if following == nil {
		following = []string{}
	}
	return PublicUser{
		ID:         u.ID,
		FullName:   u.FullName,
		Username:   u.Username,
		Email:      u.Email,
		Followers:  followers,
		Following:  following,
		ProfileImg: u.ProfileImg,
		CoverImg:   u.CoverImg,
	}
}
