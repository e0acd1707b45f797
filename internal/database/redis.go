package database

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	// ErrSessionNotFound is returned for unknown or expired sessions
	ErrSessionNotFound = errors.New("session not found")
	// ErrStateNotFound is returned when an OAuth state was never issued or already used
	ErrStateNotFound = errors.New("oauth state not found")
)

// RedisClient wraps the redis client
type RedisClient struct {
	*redis.Client
	logger logrus.FieldLogger
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// NewRedisClient creates a new Redis client
func NewRedisClient(ctx context.Context, cfg RedisConfig, logger logrus.FieldLogger) (*RedisClient, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to ping Redis: %w", err)
	}

	logger = logger.WithField("component", "redis")
	logger.WithField("addr", cfg.Addr).Info("connected to Redis")

	return &RedisClient{Client: client, logger: logger}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	if r.Client == nil {
		return nil
	}
	if r.logger != nil {
		r.logger.Info("closing Redis connection")
	}
	return r.Client.Close()
}

// Health checks the Redis connection health
func (r *RedisClient) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return r.Ping(ctx).Err()
}

// SessionStore handles session and OAuth state storage in Redis
type SessionStore struct {
	client   redis.Cmdable
	ttl      time.Duration
	stateTTL time.Duration
}

// NewSessionStore creates a new session store
func NewSessionStore(client redis.Cmdable, ttl time.Duration) *SessionStore {
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		stateTTL: 5 * time.Minute,
	}
}

// TTL is the session lifetime, used for the cookie max age
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// GenerateSessionID generates a cryptographically secure session ID
func (s *SessionStore) GenerateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// Set stores a user ID in a session
func (s *SessionStore) Set(ctx context.Context, sessionID string, userID uuid.UUID) error {
	return s.client.Set(ctx, sessionKey(sessionID), userID.String(), s.ttl).Err()
}

// Get retrieves a user ID from a session and refreshes its TTL
func (s *SessionStore) Get(ctx context.Context, sessionID string) (uuid.UUID, error) {
	key := sessionKey(sessionID)

	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get session: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user ID in session: %w", err)
	}

	s.client.Expire(ctx, key, s.ttl)

	return userID, nil
}

// Delete removes a session
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}

// Exists checks if a session exists
func (s *SessionStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	result, err := s.client.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}
	return result > 0, nil
}

// NewState issues a single-use OAuth state token for a provider
func (s *SessionStore) NewState(ctx context.Context, provider string) (string, error) {
	state, err := s.GenerateSessionID()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, "oauth_state:"+state, provider, s.stateTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}
	return state, nil
}

// ConsumeState checks and deletes an OAuth state token
func (s *SessionStore) ConsumeState(ctx context.Context, state, provider string) error {
	if state == "" {
		return ErrStateNotFound
	}
	val, err := s.client.GetDel(ctx, "oauth_state:"+state).Result()
	if errors.Is(err, redis.Nil) {
		return ErrStateNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read oauth state: %w", err)
	}
	if val != provider {
		return ErrStateNotFound
	}
	return nil
}
