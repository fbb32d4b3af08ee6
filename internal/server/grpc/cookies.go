package grpc

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/vidkeeper/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// cookieArtifacts collects session artifacts as Set-Cookie values.
type cookieArtifacts struct {
	cookies []*http.Cookie
}

func (a *cookieArtifacts) Set(name, value string, opts services.ArtifactOptions) {
	a.cookies = append(a.cookies, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: opts.HTTPOnly,
		Secure:   opts.Secure,
	})
}

func (a *cookieArtifacts) Clear(name string, opts services.ArtifactOptions) {
	a.cookies = append(a.cookies, &http.Cookie{
		Name:     name,
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: opts.HTTPOnly,
		Secure:   opts.Secure,
	})
}

func (a *cookieArtifacts) header() metadata.MD {
	md := metadata.MD{}
	for _, c := range a.cookies {
		md.Append("set-cookie", c.String())
	}
	return md
}

// sendCookies attaches the collected cookies to the response header.
func (s *GRPCServer) sendCookies(ctx context.Context, a *cookieArtifacts) {
	if len(a.cookies) == 0 {
		return
	}
	if err := grpc.SetHeader(ctx, a.header()); err != nil {
		s.logger.Warn(ctx, "could not set session cookies", "error", err)
	}
}
