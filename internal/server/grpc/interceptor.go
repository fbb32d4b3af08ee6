package grpc

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/vidkeeper/internal/common"
	"github.com/dmitrijs2005/vidkeeper/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userKey ctxKey = "user"

type authMode int

const (
	authNone authMode = iota
	authRequired
	authOptional
)

var methodAuth = map[string]authMode{
	FullMethod(MethodLogout):               authRequired,
	FullMethod(MethodChangePassword):       authRequired,
	FullMethod(MethodGetCurrentUser):       authRequired,
	FullMethod(MethodUpdateAccountDetails): authRequired,
	FullMethod(MethodUpdateAvatar):         authRequired,
	FullMethod(MethodUpdateCoverImage):     authRequired,
	FullMethod(MethodGetWatchHistory):      authRequired,
	FullMethod(MethodGetChannelProfile):    authOptional,
}

// UserFromContext returns the authenticated caller, if any.
func UserFromContext(ctx context.Context) (*models.Profile, bool) {
	u, ok := ctx.Value(userKey).(*models.Profile)
	return u, ok && u != nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	mode := methodAuth[info.FullMethod]
	if mode == authNone {
		return handler(ctx, req)
	}

	accessToken := accessTokenFromMetadata(ctx)
	if accessToken == "" {
		if mode == authOptional {
			return handler(ctx, req)
		}
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	user, err := s.sessions.Authenticate(ctx, accessToken)
	if err != nil {
		if mode == authOptional {
			return handler(ctx, req)
		}
		return nil, toStatus(err)
	}

	ctx = context.WithValue(ctx, userKey, user)

	return handler(ctx, req)
}

// accessTokenFromMetadata looks at the accessToken cookie, then an
// "authorization: Bearer" header, then the access_token key.
func accessTokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	if v := cookieValue(md, common.AccessTokenCookieName); v != "" {
		return v
	}

	for _, h := range md.Get("authorization") {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}

	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
		return values[0]
	}

	return ""
}

func cookieValue(md metadata.MD, name string) string {
	for _, line := range md.Get("cookie") {
		cookies, err := http.ParseCookie(line)
		if err != nil {
			continue
		}
		for _, c := range cookies {
			if c.Name == name && c.Value != "" {
				return c.Value
			}
		}
	}
	return ""
}
