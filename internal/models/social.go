package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/liamwears/lbmovies/internal/catalog"
)

// Comment on a title
type Comment struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	UserID    uuid.UUID    `db:"userId" json:"userId"`
	TmdbID    int          `db:"tmdbId" json:"tmdbId"`
	Kind      catalog.Kind `db:"kind" json:"kind"`
	Content   string       `db:"content" json:"content"`
	CreatedAt time.Time    `db:"createdAt" json:"createdAt"`
	UpdatedAt time.Time    `db:"updatedAt" json:"updatedAt"`
	// AuthorName is joined from "User"
	AuthorName string `json:"authorName"`
}

// CommentInput is the body for creating or editing a comment
type CommentInput struct {
	Content string `json:"content"`
}

// Follow is a directed follower -> following edge
type Follow struct {
	FollowerID  uuid.UUID `db:"followerId" json:"followerId"`
	FollowingID uuid.UUID `db:"followingId" json:"followingId"`
	CreatedAt   time.Time `db:"createdAt" json:"createdAt"`
}

// ActivityType is what a user did
type ActivityType string

const (
	ActivityFavorite ActivityType = "favorite"
	ActivityComment  ActivityType = "comment"
	ActivityFollow   ActivityType = "follow"
)

// Activity is one entry of the social feed
type Activity struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	UserID       uuid.UUID     `db:"userId" json:"userId"`
	UserName     string        `json:"userName"`
	Type         ActivityType  `db:"type" json:"type"`
	TmdbID       *int          `db:"tmdbId" json:"tmdbId,omitempty"`
	Kind         *catalog.Kind `db:"kind" json:"kind,omitempty"`
	Title        *string       `db:"title" json:"title,omitempty"`
	TargetUserID *uuid.UUID    `db:"targetUserId" json:"targetUserId,omitempty"`
	Metadata     *string       `db:"metadata" json:"metadata,omitempty"`
	CreatedAt    time.Time     `db:"createdAt" json:"createdAt"`
}
