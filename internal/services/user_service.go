package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/liamwears/lbmovies/internal/database"
	"github.com/liamwears/lbmovies/internal/models"
)

const userColumns = `id, "providerId", provider, email, name, "createdAt", "updatedAt"`

// UserService handles user-related business logic
type UserService struct {
	db database.DBTX
}

// NewUserService creates a new UserService
func NewUserService(db database.DBTX) *UserService {
	return &UserService{db: db}
}

func scanUser(row scanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.ProviderID,
		&user.Provider,
		&user.Email,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOrCreate finds a user by provider identity or creates a new one.
// A changed email or name from the provider is written back.
func (s *UserService) FindOrCreate(ctx context.Context, providerID string, provider models.Provider, email, name string) (*models.User, error) {
	user, err := s.FindByProviderID(ctx, provider, providerID)
	if errors.Is(err, ErrNotFound) {
		return s.Create(ctx, providerID, provider, email, name)
	}
	if err != nil {
		return nil, err
	}

	if (email != "" && email != user.Email) || (name != "" && name != user.Name) {
		if email == "" {
			email = user.Email
		}
		if name == "" {
			name = user.Name
		}
		return s.Update(ctx, user.ID, email, name)
	}
	return user, nil
}

// FindByProviderID finds a user by their provider identity
func (s *UserService) FindByProviderID(ctx context.Context, provider models.Provider, providerID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM "User" WHERE provider = $1 AND "providerId" = $2`

	user, err := scanUser(s.db.QueryRow(ctx, query, provider, providerID))
	if err != nil {
		return nil, translate(err, "find user")
	}
	return user, nil
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, providerID string, provider models.Provider, email, name string) (*models.User, error) {
	if !provider.IsValid() {
		return nil, invalid("provider %s", provider)
	}

	query := `
		INSERT INTO "User" ("providerId", provider, email, name)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRow(ctx, query, providerID, provider, email, name))
	if err != nil {
		return nil, translate(err, "create user")
	}
	return user, nil
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM "User" WHERE id = $1`

	user, err := scanUser(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, "get user")
	}
	return user, nil
}

// Update updates a user's information
func (s *UserService) Update(ctx context.Context, id uuid.UUID, email, name string) (*models.User, error) {
	query := `
		UPDATE "User"
		SET email = $2, name = $3, "updatedAt" = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRow(ctx, query, id, email, name))
	if err != nil {
		return nil, translate(err, "update user")
	}
	return user, nil
}

// Delete deletes a user by ID
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.Exec(ctx, `DELETE FROM "User" WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
