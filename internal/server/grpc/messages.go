package grpc

import "github.com/dmitrijs2005/vidkeeper/internal/server/models"

// FileUpload is an uploaded file carried inline.
type FileUpload struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

type RegisterUserRequest struct {
	FullName   string      `json:"fullName"`
	Email      string      `json:"email"`
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	Avatar     *FileUpload `json:"avatar,omitempty"`
	CoverImage *FileUpload `json:"coverImage,omitempty"`
}

// UserResponse wraps a single profile.
type UserResponse struct {
	User *models.Profile `json:"user"`
}

type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User         *models.Profile `json:"user"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

// Empty is used by calls without a payload.
type Empty struct{}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type UpdateAccountDetailsRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// UpdateMediaRequest replaces an avatar or a cover image.
type UpdateMediaRequest struct {
	File *FileUpload `json:"file,omitempty"`
}

type GetChannelProfileRequest struct {
	Username string `json:"username"`
}

type ChannelProfileResponse struct {
	Channel *models.ChannelProfile `json:"channel"`
}

type WatchHistoryResponse struct {
	Videos []models.WatchedVideo `json:"videos"`
}
