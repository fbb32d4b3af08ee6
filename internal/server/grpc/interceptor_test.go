package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/vidkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type testServer struct {
	*GRPCServer
	sessions *fakeSessions
	identity *fakeIdentity
	channels *fakeChannels
}

// helper to build server
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	fs, fi, fc := newFakeSessions(), newFakeIdentity(), &fakeChannels{}
	s, err := NewGRPCServer("127.0.0.1:0", nopLogger{}, fs, fi, fc, t.TempDir())
	if err != nil {
		t.Fatalf("NewGRPCServer error: %v", err)
	}
	return &testServer{GRPCServer: s, sessions: fs, identity: fi, channels: fc}
}

func withMD(kv ...string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(kv...))
}

func TestInterceptor_PublicMethod_AllowsWithoutToken(t *testing.T) {
	s := newTestServer(t)

	info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodLogin)}
	handlerCalled := false

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled {
		t.Fatal("handler was not called")
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
}

func TestInterceptor_Protected_MissingToken(t *testing.T) {
	s := newTestServer(t)

	for _, m := range []string{MethodLogout, MethodChangePassword, MethodGetCurrentUser, MethodUpdateAccountDetails,
		MethodUpdateAvatar, MethodUpdateCoverImage, MethodGetWatchHistory} {
		info := &grpc.UnaryServerInfo{FullMethod: FullMethod(m)}

		h := func(ctx context.Context, req interface{}) (interface{}, error) {
			t.Fatalf("%s: handler should not be called when token missing", m)
			return nil, nil
		}

		_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
		if status.Code(err) != codes.Unauthenticated {
			t.Fatalf("%s: expected Unauthenticated, got %v", m, status.Code(err))
		}
		if status.Convert(err).Message() != "missing token" {
			t.Fatalf("%s: expected 'missing token', got %q", m, status.Convert(err).Message())
		}
	}
}

func TestInterceptor_Protected_InvalidToken(t *testing.T) {
	s := newTestServer(t)

	ctx := withMD(common.AccessTokenHeaderName, "not-a-valid-jwt")
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodGetCurrentUser)}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called for invalid token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(ctx, nil, info, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
}

func TestInterceptor_TokenSources(t *testing.T) {
	s := newTestServer(t)
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodGetCurrentUser)}

	cases := map[string]context.Context{
		"cookie":       withMD("cookie", "theme=dark; accessToken=access-1"),
		"bearer":       withMD("authorization", "Bearer access-1"),
		"bearer lower": withMD("authorization", "bearer access-1"),
		"metadata key": withMD(common.AccessTokenHeaderName, "access-1"),
	}

	for name, ctx := range cases {
		var got any
		h := func(ctx context.Context, req interface{}) (interface{}, error) {
			got, _ = UserFromContext(ctx)
			return "ok", nil
		}
		if _, err := s.accessTokenInterceptor(ctx, nil, info, h); err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if got != alice {
			t.Fatalf("%s: user not propagated in context: got %v", name, got)
		}
	}
}

func TestInterceptor_CookieWinsOverHeader(t *testing.T) {
	s := newTestServer(t)
	s.sessions.tokens["access-cookie"] = alice
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodGetCurrentUser)}

	ctx := withMD("cookie", "accessToken=access-cookie", "authorization", "Bearer nope")
	h := func(ctx context.Context, req interface{}) (interface{}, error) { return "ok", nil }
	if _, err := s.accessTokenInterceptor(ctx, nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInterceptor_OptionalAuth(t *testing.T) {
	s := newTestServer(t)
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodGetChannelProfile)}

	for name, ctx := range map[string]context.Context{
		"anonymous": context.Background(),
		"bad token": withMD("authorization", "Bearer junk"),
	} {
		called := false
		h := func(ctx context.Context, req interface{}) (interface{}, error) {
			called = true
			if _, ok := UserFromContext(ctx); ok {
				t.Fatalf("%s: no user expected", name)
			}
			return "ok", nil
		}
		if _, err := s.accessTokenInterceptor(ctx, nil, info, h); err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if !called {
			t.Fatalf("%s: handler not called", name)
		}
	}

	var got any
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		got, _ = UserFromContext(ctx)
		return "ok", nil
	}
	if _, err := s.accessTokenInterceptor(withMD("authorization", "Bearer access-1"), nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != alice {
		t.Fatalf("expected viewer in context, got %v", got)
	}
}
