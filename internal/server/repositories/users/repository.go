// Package users holds the credential store: user records, their password
// hashes and the read-time aggregations built over them.
package users

import (
	"context"

	"github.com/dmitrijs2005/vidkeeper/internal/server/graph"
	"github.com/dmitrijs2005/vidkeeper/internal/server/models"
)

// Repository is the user store contract. Implementations return
// common.ErrorNotFound for absent records and common.ErrorConflict when a
// unique username or email would be duplicated.
type Repository interface {
	// FindByID returns the user with the given id.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindOne returns the first user whose username equals username OR whose
	// email equals email. Empty arguments never match.
	FindOne(ctx context.Context, username, email string) (*models.User, error)

	// Create hashes password and inserts user, filling in its id and timestamps.
	Create(ctx context.Context, user *models.User, password string) (*models.User, error)

	// UpdateByID applies the non-nil fields of upd and returns the updated record.
	UpdateByID(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)

	// UpdatePassword re-hashes password and stores it for the user.
	UpdatePassword(ctx context.Context, id string, password string) error

	// Aggregate runs a rendered pipeline and hands every row to scan.
	Aggregate(ctx context.Context, q graph.Query, scan func(graph.Row) error) error
}
