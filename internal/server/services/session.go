// Package services contains server-side business logic. This file implements
// SessionService: login, logout, token refresh, password change and access
// token authentication.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/vidkeeper/internal/common"
	"github.com/dmitrijs2005/vidkeeper/internal/logging"
	"github.com/dmitrijs2005/vidkeeper/internal/server/auth"
	"github.com/dmitrijs2005/vidkeeper/internal/server/models"
	"github.com/dmitrijs2005/vidkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidkeeper/internal/server/repositories/users"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// ArtifactOptions are the attributes of a client-side session artifact.
type ArtifactOptions struct {
	HTTPOnly bool
	Secure   bool
}

// SessionArtifacts receives the client-side copies of session tokens, e.g. as
// cookies on the response.
type SessionArtifacts interface {
	Set(name, value string, opts ArtifactOptions)
	Clear(name string, opts ArtifactOptions)
}

var sessionArtifactOptions = ArtifactOptions{HTTPOnly: true, Secure: true}

// LoginInput identifies the account by username or email.
type LoginInput struct {
	UserName string
	Email    string
	Password string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User         *models.Profile
	AccessToken  string
	RefreshToken string
}

// SessionService drives the refresh-token slot: NoSession -> Active(R) ->
// Active(R') -> NoSession.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
	logger      logging.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer, logger logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		issuer:      issuer,
		logger:      logger.With("module", "session"),
	}
}

// Login verifies credentials, opens a new session and sets both artifacts.
// A previous session of the same user is replaced.
func (s *SessionService) Login(ctx context.Context, in LoginInput, artifacts SessionArtifacts) (*LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(in.UserName))
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" && email == "" {
		return nil, common.NewError(common.ErrorBadRequest, "username or email is required")
	}

	user, err := s.repomanager.Users(s.db).FindOne(ctx, username, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			users.CheckDummyPassword(in.Password)
			return nil, common.NewError(common.ErrorNotFound, "user does not exist")
		}
		return nil, common.WrapError(common.ErrorInternal, "error searching user", err)
	}

	if !users.CheckPassword(user.PasswordHash, in.Password) {
		return nil, common.NewError(common.ErrorUnauthorized, "invalid user credentials")
	}

	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	if artifacts != nil {
		artifacts.Set(common.AccessTokenCookieName, pair.AccessToken, sessionArtifactOptions)
		artifacts.Set(common.RefreshTokenCookieName, pair.RefreshToken, sessionArtifactOptions)
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)

	return &LoginResult{
		User:         user.Profile(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Logout clears the refresh-token slot and both artifacts. Logging out twice
// is not an error.
func (s *SessionService) Logout(ctx context.Context, userID string, artifacts SessionArtifacts) error {
	if err := s.repomanager.RefreshTokens(s.db).Clear(ctx, userID); err != nil {
		return common.WrapError(common.ErrorInternal, "error clearing session", err)
	}

	if artifacts != nil {
		artifacts.Clear(common.AccessTokenCookieName, sessionArtifactOptions)
		artifacts.Clear(common.RefreshTokenCookieName, sessionArtifactOptions)
	}

	s.logger.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

// Refresh exchanges the current refresh token for a new pair. Any token other
// than the one in the slot is rejected, so each refresh token works once.
func (s *SessionService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	if presented == "" {
		return nil, common.NewError(common.ErrorUnauthorized, "unauthorized request")
	}

	claims, err := s.issuer.Verify(presented, auth.RefreshToken)
	if err != nil {
		return nil, common.WrapError(common.ErrorUnauthorized, "invalid refresh token", err)
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorUnauthorized, "invalid refresh token")
		}
		return nil, common.WrapError(common.ErrorInternal, "error searching user", err)
	}

	if subtle.ConstantTimeCompare([]byte(presented), []byte(user.RefreshToken)) != 1 {
		s.logger.Warn(ctx, "stale refresh token presented", "user_id", user.ID)
		return nil, common.NewError(common.ErrorUnauthorized, "refresh token is expired or used")
	}

	return s.generateTokenPair(ctx, user)
}

// ChangePassword replaces the password after checking the old one. Existing
// sessions stay valid.
func (s *SessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return common.NewError(common.ErrorBadRequest, "new password is required")
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, "user does not exist")
		}
		return common.WrapError(common.ErrorInternal, "error searching user", err)
	}

	if !users.CheckPassword(user.PasswordHash, oldPassword) {
		return common.NewError(common.ErrorBadRequest, "invalid old password")
	}

	if err := repo.UpdatePassword(ctx, user.ID, newPassword); err != nil {
		return common.WrapError(common.ErrorInternal, "error saving password", err)
	}

	s.logger.Info(ctx, "password changed", "user_id", user.ID)
	return nil
}

// Authenticate verifies an access token and returns the user it belongs to.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (*models.Profile, error) {
	if accessToken == "" {
		return nil, common.NewError(common.ErrorUnauthorized, "unauthorized request")
	}

	claims, err := s.issuer.Verify(accessToken, auth.AccessToken)
	if err != nil {
		return nil, common.WrapError(common.ErrorUnauthorized, "invalid access token", err)
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorUnauthorized, "invalid access token")
		}
		return nil, common.WrapError(common.ErrorInternal, "error searching user", err)
	}

	return user.Profile(), nil
}

func (s *SessionService) generateTokenPair(ctx context.Context, user *models.User) (*TokenPair, error) {
	const msg = "something went wrong while generating refresh and access token"

	access, err := s.issuer.IssueAccessToken(user.ID, auth.ProfileClaims{
		Email:    user.Email,
		UserName: user.UserName,
		FullName: user.FullName,
	})
	if err != nil {
		return nil, common.WrapError(common.ErrorInternal, msg, err)
	}

	refresh, err := s.issuer.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, common.WrapError(common.ErrorInternal, msg, err)
	}

	if err := s.repomanager.RefreshTokens(s.db).Store(ctx, user.ID, refresh); err != nil {
		return nil, common.WrapError(common.ErrorInternal, msg, err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
