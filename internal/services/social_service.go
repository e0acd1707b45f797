package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/liamwears/lbmovies/internal/catalog"
	"github.com/liamwears/lbmovies/internal/database"
	"github.com/liamwears/lbmovies/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100

	maxCommentLength = 2000
)

// TitleRef identifies a catalog title, with its display title when known
type TitleRef struct {
	Kind   catalog.Kind
	TmdbID int
	Title  string
}

// SocialService handles comments, follows, profiles and the activity feed
type SocialService struct {
	db     database.DBTX
	logger logrus.FieldLogger
}

// NewSocialService creates a new SocialService
func NewSocialService(db database.DBTX, logger logrus.FieldLogger) *SocialService {
	return &SocialService{
		db:     db,
		logger: logger.WithField("component", "social"),
	}
}

// RecordActivity stores a feed event. Errors are logged, never returned.
func (s *SocialService) RecordActivity(ctx context.Context, a models.Activity) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO "Activity" ("userId", type, "tmdbId", kind, title, "targetUserId", metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.UserID, a.Type, a.TmdbID, a.Kind, a.Title, a.TargetUserID, a.Metadata)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id": a.UserID,
			"type":    a.Type,
		}).WithError(err).Warn("failed to record activity")
	}
}

func normalizeComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", invalid("comment content is required")
	}
	if len(content) > maxCommentLength {
		return "", invalid("comment is longer than %d characters", maxCommentLength)
	}
	return content, nil
}

const commentSelect = `
	SELECT c.id, c."userId", c."tmdbId", c.kind, c.content, c."createdAt", c."updatedAt", u.name
	FROM "Comment" c
	JOIN "User" u ON u.id = c."userId"`

func scanComment(row scanner) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.TmdbID,
		&c.Kind,
		&c.Content,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.AuthorName,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AddComment posts a comment on a title
func (s *SocialService) AddComment(ctx context.Context, userID uuid.UUID, title TitleRef, content string) (*models.Comment, error) {
	content, err := normalizeComment(content)
	if err != nil {
		return nil, err
	}
	if !title.Kind.IsValid() || title.TmdbID <= 0 {
		return nil, invalid("unknown title")
	}

	query := `
		WITH c AS (
			INSERT INTO "Comment" ("userId", "tmdbId", kind, content)
			VALUES ($1, $2, $3, $4)
			RETURNING id, "userId", "tmdbId", kind, content, "createdAt", "updatedAt"
		)
		SELECT c.id, c."userId", c."tmdbId", c.kind, c.content, c."createdAt", c."updatedAt", u.name
		FROM c JOIN "User" u ON u.id = c."userId"`

	comment, err := scanComment(s.db.QueryRow(ctx, query, userID, title.TmdbID, title.Kind, content))
	if err != nil {
		return nil, translate(err, "add comment")
	}

	a := models.Activity{
		UserID:   userID,
		Type:     models.ActivityComment,
		TmdbID:   &comment.TmdbID,
		Kind:     &comment.Kind,
		Metadata: &comment.Content,
	}
	if title.Title != "" {
		a.Title = &title.Title
	}
	s.RecordActivity(ctx, a)

	return comment, nil
}

// ListComments returns a title's comments, newest first
func (s *SocialService) ListComments(ctx context.Context, kind catalog.Kind, tmdbID int) ([]models.Comment, error) {
	rows, err := s.db.Query(ctx, commentSelect+`
		WHERE c.kind = $1 AND c."tmdbId" = $2
		ORDER BY c."createdAt" DESC
	`, kind, tmdbID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return comments, nil
}

// UpdateComment edits the caller's own comment
func (s *SocialService) UpdateComment(ctx context.Context, userID, commentID uuid.UUID, content string) (*models.Comment, error) {
	content, err := normalizeComment(content)
	if err != nil {
		return nil, err
	}

	query := `
		WITH c AS (
			UPDATE "Comment" SET content = $3, "updatedAt" = NOW()
			WHERE id = $1 AND "userId" = $2
			RETURNING id, "userId", "tmdbId", kind, content, "createdAt", "updatedAt"
		)
		SELECT c.id, c."userId", c."tmdbId", c.kind, c.content, c."createdAt", c."updatedAt", u.name
		FROM c JOIN "User" u ON u.id = c."userId"`

	comment, err := scanComment(s.db.QueryRow(ctx, query, commentID, userID, content))
	if err != nil {
		return nil, translate(err, "update comment")
	}
	return comment, nil
}

// DeleteComment removes the caller's own comment
func (s *SocialService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	result, err := s.db.Exec(ctx, `DELETE FROM "Comment" WHERE id = $1 AND "userId" = $2`, commentID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Follow makes followerID follow followingID
func (s *SocialService) Follow(ctx context.Context, followerID, followingID uuid.UUID) error {
	if followerID == followingID {
		return invalid("cannot follow yourself")
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO "Follow" ("followerId", "followingId") VALUES ($1, $2)
	`, followerID, followingID)
	if err != nil {
		return translate(err, "follow user")
	}

	s.RecordActivity(ctx, models.Activity{
		UserID:       followerID,
		Type:         models.ActivityFollow,
		TargetUserID: &followingID,
	})
	return nil
}

// Unfollow removes a follow edge
func (s *SocialService) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	result, err := s.db.Exec(ctx, `
		DELETE FROM "Follow" WHERE "followerId" = $1 AND "followingId" = $2
	`, followerID, followingID)
	if err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IsFollowing reports whether followerID follows followingID
func (s *SocialService) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM "Follow" WHERE "followerId" = $1 AND "followingId" = $2)
	`, followerID, followingID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

// Followers lists the users following userID
func (s *SocialService) Followers(ctx context.Context, userID uuid.UUID) ([]*models.User, error) {
	return s.users(ctx, `
		SELECT u.id, u."providerId", u.provider, u.email, u.name, u."createdAt", u."updatedAt"
		FROM "Follow" f JOIN "User" u ON u.id = f."followerId"
		WHERE f."followingId" = $1
		ORDER BY f."createdAt" DESC
	`, userID)
}

// Following lists the users userID follows
func (s *SocialService) Following(ctx context.Context, userID uuid.UUID) ([]*models.User, error) {
	return s.users(ctx, `
		SELECT u.id, u."providerId", u.provider, u.email, u.name, u."createdAt", u."updatedAt"
		FROM "Follow" f JOIN "User" u ON u.id = f."followingId"
		WHERE f."followerId" = $1
		ORDER BY f."createdAt" DESC
	`, userID)
}

func (s *SocialService) users(ctx context.Context, query string, userID uuid.UUID) ([]*models.User, error) {
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// Profile returns a user with social counts. viewerID may be uuid.Nil.
func (s *SocialService) Profile(ctx context.Context, viewerID, userID uuid.UUID) (*models.Profile, error) {
	var (
		user    models.User
		profile models.Profile
	)
	err := s.db.QueryRow(ctx, `
		SELECT u.id, u."providerId", u.provider, u.email, u.name, u."createdAt", u."updatedAt",
			(SELECT COUNT(*) FROM "Follow" WHERE "followingId" = u.id),
			(SELECT COUNT(*) FROM "Follow" WHERE "followerId" = u.id),
			(SELECT COUNT(*) FROM "LibraryItem" WHERE "userId" = u.id AND list = 'favorites'),
			EXISTS (SELECT 1 FROM "Follow" WHERE "followerId" = $2 AND "followingId" = u.id)
		FROM "User" u
		WHERE u.id = $1
	`, userID, viewerID).Scan(
		&user.ID,
		&user.ProviderID,
		&user.Provider,
		&user.Email,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
		&profile.FollowerCount,
		&profile.FollowingCount,
		&profile.FavoriteCount,
		&profile.IsFollowing,
	)
	if err != nil {
		return nil, translate(err, "get profile")
	}
	profile.User = &user
	return &profile, nil
}

// Feed returns the latest activity of the users userID follows
func (s *SocialService) Feed(ctx context.Context, userID uuid.UUID, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	rows, err := s.db.Query(ctx, `
		SELECT a.id, a."userId", u.name, a.type, a."tmdbId", a.kind, a.title, a."targetUserId", a.metadata, a."createdAt"
		FROM "Activity" a
		JOIN "Follow" f ON f."followingId" = a."userId"
		JOIN "User" u ON u.id = a."userId"
		WHERE f."followerId" = $1
		ORDER BY a."createdAt" DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed: %w", err)
	}
	defer rows.Close()

	feed := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.UserName,
			&a.Type,
			&a.TmdbID,
			&a.Kind,
			&a.Title,
			&a.TargetUserID,
			&a.Metadata,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		feed = append(feed, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed: %w", err)
	}
	return feed, nil
}
