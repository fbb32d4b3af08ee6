package common

// AccessTokenHeaderName is the gRPC metadata key that may carry the access
// token on inbound requests.
const AccessTokenHeaderName = "access_token"

// Session artifact names set on successful login.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)
