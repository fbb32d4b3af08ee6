package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/vidkeeper/internal/common"
	"github.com/dmitrijs2005/vidkeeper/internal/dbx"
	"github.com/dmitrijs2005/vidkeeper/internal/filex"
	"github.com/dmitrijs2005/vidkeeper/internal/logging"
	"github.com/dmitrijs2005/vidkeeper/internal/server/media"
	"github.com/dmitrijs2005/vidkeeper/internal/server/models"
	"github.com/dmitrijs2005/vidkeeper/internal/server/repositories/repomanager"
)

// RegisterInput carries the text fields of a registration.
type RegisterInput struct {
	FullName string
	Email    string
	UserName string
	Password string
}

// IdentityService creates accounts and maintains their profile data and media.
type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	media       media.Uploader
	logger      logging.Logger
}

// NewIdentityService constructs an IdentityService.
func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, uploader media.Uploader, logger logging.Logger) *IdentityService {
	return &IdentityService{
		db:          db,
		repomanager: m,
		media:       uploader,
		logger:      logger.With("module", "identity"),
	}
}

// Register creates an account. avatarPath and coverPath point at staged local
// files; the avatar is required, the cover is optional and a failed cover
// upload is tolerated.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput, avatarPath, coverPath string) (*models.Profile, error) {
	if in.FullName == "" {
		return nil, s.reject(common.NewError(common.ErrorBadRequest, "fullname is required"), avatarPath, coverPath)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.ToLower(strings.TrimSpace(in.UserName))
	if email == "" || username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, s.reject(common.NewError(common.ErrorBadRequest, "all fields are required"), avatarPath, coverPath)
	}

	_, err := s.repomanager.Users(s.db).FindOne(ctx, username, email)
	switch {
	case err == nil:
		return nil, s.reject(common.NewError(common.ErrorConflict, "user with email or username already exists"), avatarPath, coverPath)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, s.reject(common.WrapError(common.ErrorInternal, "error searching user", err), avatarPath, coverPath)
	}

	if avatarPath == "" {
		return nil, s.reject(common.NewError(common.ErrorBadRequest, "avatar file is required"), "", coverPath)
	}

	avatar, err := s.media.Upload(ctx, avatarPath)
	if err != nil || avatar == nil || avatar.URL == "" {
		if err != nil {
			s.logger.Warn(ctx, "avatar upload failed", "error", err)
		}
		return nil, s.reject(common.WrapError(common.ErrorBadRequest, "avatar file is required", err), "", coverPath)
	}

	coverURL := ""
	if cover, err := s.media.Upload(ctx, coverPath); err != nil {
		s.logger.Warn(ctx, "cover image upload failed", "error", err)
	} else if cover != nil {
		coverURL = cover.URL
	}

	created, err := dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		repo := s.repomanager.Users(tx)

		u, err := repo.Create(ctx, &models.User{
			UserName:   username,
			Email:      email,
			FullName:   in.FullName,
			Avatar:     avatar.URL,
			CoverImage: coverURL,
		}, in.Password)
		if err != nil {
			return nil, err
		}

		return repo.FindByID(ctx, u.ID)
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, err
		}
		return nil, common.WrapError(common.ErrorInternal, "something went wrong while registering the user", err)
	}
	if created == nil {
		return nil, common.NewError(common.ErrorInternal, "something went wrong while registering the user")
	}

	s.logger.Info(ctx, "user registered", "user_id", created.ID)
	return created.Profile(), nil
}

// reject drops staged files that will never be uploaded and returns err.
func (s *IdentityService) reject(err error, paths ...string) error {
	for _, p := range paths {
		_ = filex.Remove(p)
	}
	return err
}

// CurrentUser returns the profile of userID.
func (s *IdentityService) CurrentUser(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, "user does not exist")
		}
		return nil, common.WrapError(common.ErrorInternal, "error searching user", err)
	}
	return user.Profile(), nil
}

// UpdateAccountDetails sets full name and email. Email uniqueness is left to
// the store.
func (s *IdentityService) UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*models.Profile, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return nil, common.NewError(common.ErrorBadRequest, "all fields are required")
	}

	return s.update(ctx, userID, models.UserUpdate{FullName: &fullName, Email: &email})
}

// UpdateAvatar uploads the staged file at path and makes it the avatar. The
// previous avatar object is kept.
func (s *IdentityService) UpdateAvatar(ctx context.Context, userID, path string) (*models.Profile, error) {
	if path == "" {
		return nil, common.NewError(common.ErrorBadRequest, "avatar file is missing")
	}

	asset, err := s.media.Upload(ctx, path)
	if err != nil || asset == nil || asset.URL == "" {
		return nil, common.WrapError(common.ErrorBadRequest, "error while uploading avatar", err)
	}

	return s.update(ctx, userID, models.UserUpdate{Avatar: &asset.URL})
}

// UpdateCoverImage uploads the staged file at path and makes it the cover
// image. The previous cover object is kept.
func (s *IdentityService) UpdateCoverImage(ctx context.Context, userID, path string) (*models.Profile, error) {
	if path == "" {
		return nil, common.NewError(common.ErrorBadRequest, "cover image file is missing")
	}

	asset, err := s.media.Upload(ctx, path)
	if err != nil || asset == nil || asset.URL == "" {
		return nil, common.WrapError(common.ErrorBadRequest, "error while uploading cover image", err)
	}

	return s.update(ctx, userID, models.UserUpdate{CoverImage: &asset.URL})
}

func (s *IdentityService) update(ctx context.Context, userID string, upd models.UserUpdate) (*models.Profile, error) {
	user, err := s.repomanager.Users(s.db).UpdateByID(ctx, userID, upd)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.NewError(common.ErrorNotFound, "user does not exist")
		case errors.Is(err, common.ErrorConflict):
			return nil, err
		default:
			return nil, common.WrapError(common.ErrorInternal, "error updating user", err)
		}
	}
	return user.Profile(), nil
}
