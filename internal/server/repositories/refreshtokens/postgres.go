// Package refreshtokens provides a PostgreSQL-backed repository for the
// refresh-token slot used in the server's session flow.
package refreshtokens

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vidkeeper/internal/common"
	"github.com/dmitrijs2005/vidkeeper/internal/dbx"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Store writes token into the user's slot.
func (r *PostgresRepository) Store(ctx context.Context, userID string, token string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return common.ErrorNotFound
	}

	query := `
		UPDATE users SET refresh_token = $2
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Clear sets the user's slot to NULL.
func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return nil
	}

	query := `
		UPDATE users SET refresh_token = NULL
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
