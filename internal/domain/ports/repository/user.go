package repository

import (
	"context"

	"cadi-backend/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	// Create inserts the user row together with its profile row.
	Create(ctx context.Context, tx Tx, u *model.User) error
	// Save updates user and profile fields.
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByUsername(ctx context.Context, tx Tx, username string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	ListByIDs(ctx context.Context, tx Tx, ids []string) ([]*model.User, error)
	ListByRole(ctx context.Context, tx Tx, role model.Role) ([]*model.User, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.User, error)
}

// -----------------------------
// Notification preferences
// -----------------------------

type PreferenceRepository interface {
	// Get returns domain.ErrNotFound when the user has no row.
	Get(ctx context.Context, tx Tx, userID string) (*model.NotificationPreference, error)
	// GetMany returns only the rows that exist.
	GetMany(ctx context.Context, tx Tx, userIDs []string) (map[string]*model.NotificationPreference, error)
	Upsert(ctx context.Context, tx Tx, p *model.NotificationPreference) error
}
