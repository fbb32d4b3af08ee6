package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/vidkeeper/internal/common"
	"github.com/dmitrijs2005/vidkeeper/internal/dbx"
	"github.com/dmitrijs2005/vidkeeper/internal/logging"
	"github.com/dmitrijs2005/vidkeeper/internal/server/auth"
	"github.com/dmitrijs2005/vidkeeper/internal/server/graph"
	"github.com/dmitrijs2005/vidkeeper/internal/server/media"
	"github.com/dmitrijs2005/vidkeeper/internal/server/models"
	"github.com/dmitrijs2005/vidkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/vidkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

func nopLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newIssuer(t *testing.T) *auth.Issuer {
	t.Helper()
	i, err := auth.NewIssuer("access-secret", "refresh-secret", time.Hour, 240*time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer error: %v", err)
	}
	return i
}

// fakeStore is an in-memory user table shared by the users and refresh-token
// fakes, so slot changes made through one are visible through the other.
type fakeStore struct {
	mu    sync.Mutex
	byID  map[string]*models.User
	order []string

	findOneErr   error
	findByIDErr  error
	createErr    error
	updateErr    error
	storeErr     error
	clearErr     error
	hideCreated  bool
	aggRows      [][]any
	aggErr       error
	lastQuery    graph.Query
	storeCalls   int
	clearCalls   int
	updatePwCall int
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[string]*models.User{}}
}

// seed stores a user with the given plaintext password and returns it.
func (f *fakeStore) seed(t *testing.T, username, email, password string) *models.User {
	t.Helper()
	u, err := f.Create(context.Background(), &models.User{
		UserName: username, Email: email, FullName: "Full " + username, Avatar: "http://cdn/" + username + ".png",
	}, password)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return u
}

func (f *fakeStore) get(id string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		c := *u
		return &c
	}
	return nil
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	if f.findByIDErr != nil {
		return nil, f.findByIDErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok || (f.hideCreated && len(f.order) > 0 && f.order[len(f.order)-1] == id) {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeStore) FindOne(ctx context.Context, username, email string) (*models.User, error) {
	if f.findOneErr != nil {
		return nil, f.findOneErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		u := f.byID[id]
		if (username != "" && u.UserName == username) || (email != "" && u.Email == email) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeStore) Create(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.UserName == user.UserName || u.Email == user.Email {
			return nil, common.WrapError(common.ErrorConflict, "user with email or username already exists", fmt.Errorf("duplicate"))
		}
	}
	now := time.Now().UTC()
	c := *user
	c.ID = uuid.NewString()
	c.PasswordHash = hash
	c.CreatedAt, c.UpdatedAt = now, now
	f.byID[c.ID] = &c
	f.order = append(f.order, c.ID)
	out := c
	return &out, nil
}

func (f *fakeStore) UpdateByID(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.Email != nil {
		for oid, o := range f.byID {
			if oid != id && o.Email == *upd.Email {
				return nil, common.WrapError(common.ErrorConflict, "user with email or username already exists", fmt.Errorf("duplicate"))
			}
		}
		u.Email = *upd.Email
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	if upd.CoverImage != nil {
		u.CoverImage = *upd.CoverImage
	}
	u.UpdatedAt = time.Now().UTC()
	c := *u
	return &c, nil
}

func (f *fakeStore) UpdatePassword(ctx context.Context, id string, password string) error {
	f.updatePwCall++
	hash, err := users.HashPassword(password)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeStore) Aggregate(ctx context.Context, q graph.Query, scan func(graph.Row) error) error {
	f.lastQuery = q
	if f.aggErr != nil {
		return f.aggErr
	}
	for _, r := range f.aggRows {
		if err := scan(fakeRow(r)); err != nil {
			return err
		}
	}
	return nil
}

// refresh-token slot

type fakeSlots struct{ s *fakeStore }

func (r fakeSlots) Store(ctx context.Context, userID string, token string) error {
	r.s.storeCalls++
	if r.s.storeErr != nil {
		return r.s.storeErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.RefreshToken = token
	return nil
}

func (r fakeSlots) Clear(ctx context.Context, userID string) error {
	r.s.clearCalls++
	if r.s.clearErr != nil {
		return r.s.clearErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.byID[userID]; ok {
		u.RefreshToken = ""
	}
	return nil
}

type fakeRepoManager struct{ s *fakeStore }

func (m fakeRepoManager) RunMigrations(context.Context, *sql.DB) error         { return nil }
func (m fakeRepoManager) Users(db dbx.DBTX) users.Repository                 { return m.s }
func (m fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository { return fakeSlots{m.s} }

// fakeRow assigns values positionally.
type fakeRow []any

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r) {
		return fmt.Errorf("scan: %d dest for %d values", len(dest), len(r))
	}
	for i, d := range dest {
		v := r[i]
		switch p := d.(type) {
		case *string:
			p2, ok := v.(string)
			if !ok {
				return fmt.Errorf("col %d: want string, got %T", i, v)
			}
			*p = p2
		case *int64:
			*p = v.(int64)
		case *float64:
			*p = v.(float64)
		case *bool:
			*p = v.(bool)
		case *time.Time:
			*p = v.(time.Time)
		case *sql.NullString:
			if v == nil {
				*p = sql.NullString{}
			} else {
				*p = sql.NullString{String: v.(string), Valid: true}
			}
		default:
			return fmt.Errorf("col %d: unsupported dest %T", i, d)
		}
	}
	return nil
}

type fakeArtifacts struct {
	set     map[string]string
	cleared []string
	opts    []ArtifactOptions
}

func newFakeArtifacts() *fakeArtifacts { return &fakeArtifacts{set: map[string]string{}} }

func (a *fakeArtifacts) Set(name, value string, opts ArtifactOptions) {
	a.set[name] = value
	a.opts = append(a.opts, opts)
}

func (a *fakeArtifacts) Clear(name string, opts ArtifactOptions) {
	delete(a.set, name)
	a.cleared = append(a.cleared, name)
	a.opts = append(a.opts, opts)
}

type fakeUploader struct {
	assets map[string]*media.Asset
	errs   map[string]error
	calls  []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{assets: map[string]*media.Asset{}, errs: map[string]error{}}
}

func (u *fakeUploader) Upload(ctx context.Context, localPath string) (*media.Asset, error) {
	if localPath == "" {
		return nil, nil
	}
	u.calls = append(u.calls, localPath)
	if err := u.errs[localPath]; err != nil {
		return nil, err
	}
	if a, ok := u.assets[localPath]; ok {
		return a, nil
	}
	return &media.Asset{URL: "http://cdn/media/" + localPath, Key: "media/" + localPath}, nil
}
