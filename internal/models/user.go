package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider represents the OAuth provider type
type Provider string

const (
	ProviderGitHub Provider = "GITHUB"
	ProviderGoogle Provider = "GOOGLE"
)

// User represents a user in the system
type User struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ProviderID string    `db:"providerId" json:"-"`
	Provider   Provider  `db:"provider" json:"provider"`
	Email      string    `db:"email" json:"-"`
	Name       string    `db:"name" json:"name"`
	CreatedAt  time.Time `db:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `db:"updatedAt" json:"updatedAt"`
}

// DisplayName falls back to the email's local part when no name is set
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if local, _, ok := strings.Cut(u.Email, "@"); ok && local != "" {
		return local
	}
	return "anonymous"
}

// Profile is a user with social counts
type Profile struct {
	User           *User `json:"user"`
	FollowerCount  int   `json:"followerCount"`
	FollowingCount int   `json:"followingCount"`
	FavoriteCount  int   `json:"favoriteCount"`
	IsFollowing    bool  `json:"isFollowing"`
}

// String returns the string representation of Provider
func (p Provider) String() string {
	return string(p)
}

// IsValid checks if the provider is valid
func (p Provider) IsValid() bool {
	return p == ProviderGitHub || p == ProviderGoogle
}
