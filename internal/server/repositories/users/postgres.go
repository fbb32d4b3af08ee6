package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vidkeeper/internal/common"
	"github.com/dmitrijs2005/vidkeeper/internal/dbx"
	"github.com/dmitrijs2005/vidkeeper/internal/server/graph"
	"github.com/dmitrijs2005/vidkeeper/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const userColumns = `id, username, email, full_name, avatar, cover_image, password, refresh_token, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row graph.Row) (*models.User, error) {
	user := &models.User{}
	var refresh sql.NullString
	err := row.Scan(&user.ID, &user.UserName, &user.Email, &user.FullName, &user.Avatar,
		&user.CoverImage, &user.PasswordHash, &refresh, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.RefreshToken = refresh.String
	return user, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	// ids that are not uuids cannot exist; postgres would reject them with a cast error
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *PostgresRepository) FindOne(ctx context.Context, username, email string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
		 LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username, email))
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User, password string) (*models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	query :=
		`INSERT INTO users (username, email, full_name, avatar, cover_image, password)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		user.UserName, user.Email, user.FullName, user.Avatar, user.CoverImage, hash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	user.PasswordHash = hash
	return user, nil
}

func (r *PostgresRepository) UpdateByID(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query :=
		`UPDATE users SET
		 full_name = COALESCE($2, full_name),
		 email = COALESCE($3, email),
		 avatar = COALESCE($4, avatar),
		 cover_image = COALESCE($5, cover_image),
		 updated_at = now()
		 WHERE id = $1
		 RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query, id,
		nullable(upd.FullName), nullable(upd.Email), nullable(upd.Avatar), nullable(upd.CoverImage))

	user, err := scanUser(row)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, password string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	query := `UPDATE users SET password = $2, updated_at = now() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Aggregate(ctx context.Context, q graph.Query, scan func(graph.Row) error) error {
	rows, err := r.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return common.WrapError(common.ErrorConflict, "user with email or username already exists", err)
	}
	return fmt.Errorf("db error: %w", err)
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
