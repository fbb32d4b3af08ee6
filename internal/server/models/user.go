// Package models defines server-side data models persisted in the database
// and the projections returned to callers.
package models

import "time"

// User is the full identity record as stored. It carries the password hash
// and the current refresh token, so it must never leave the server; use
// Profile for anything outward facing.
type User struct {
	ID           string
	UserName     string
	Email        string
	FullName     string
	Avatar       string
	CoverImage   string
	PasswordHash string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the sanitized projection of a User: no password, no refresh token.
type Profile struct {
	ID         string    `json:"_id"`
	UserName   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Profile returns the sanitized projection of u. A nil user yields nil.
func (u *User) Profile() *Profile {
	if u == nil {
		return nil
	}
	return &Profile{
		ID:         u.ID,
		UserName:   u.UserName,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// UserUpdate lists the fields an in-place update may change. Nil fields are
// left untouched.
type UserUpdate struct {
	FullName   *string
	Email      *string
	Avatar     *string
	CoverImage *string
}
