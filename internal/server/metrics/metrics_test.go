package metrics

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/vidkeeper/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestInterceptor_CountsByMethodAndCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewGRPCMetrics(reg)
	icpt := m.UnaryServerInterceptor()

	info := &grpc.UnaryServerInfo{FullMethod: "/vidkeeper.v1.IdentityService/Login"}
	ok := func(ctx context.Context, req any) (any, error) { return "ok", nil }
	bad := func(ctx context.Context, req any) (any, error) { return nil, status.Error(codes.Unauthenticated, "no") }

	resp, err := icpt(context.Background(), nil, info, ok)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	_, err = icpt(context.Background(), nil, info, bad)
	require.Error(t, err)
	_, _ = icpt(context.Background(), nil, info, bad)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(info.FullMethod, "OK")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(info.FullMethod, "Unauthenticated")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := NewRegistry()
	m := NewGRPCMetrics(reg)
	m.requests.WithLabelValues("/x/Y", "OK").Inc()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `vidkeeper_grpc_requests_total{code="OK",method="/x/Y"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", prometheus.NewRegistry(), logger) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}

func TestServe_BadAddress(t *testing.T) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := Serve(context.Background(), "127.0.0.1:99999", prometheus.NewRegistry(), logger)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid port") || strings.Contains(err.Error(), "99999"))
}
