package router

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/dispatch/api/handler"
	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/internal/infrastructure/monitor"
	"github.com/fastygo/dispatch/internal/metrics"
	"github.com/fastygo/dispatch/internal/middleware"
	dashboardUC "github.com/fastygo/dispatch/usecase/dashboard"
)

const secret = "router-test-secret"

type okStatus struct{}

func (okStatus) GetStatus() monitor.Status {
	return monitor.Status{PostgreSQL: true, Redis: true, Buffer: true}
}

type emptyDashboard struct{}

func (emptyDashboard) Summary(_ context.Context, q dashboardUC.Query) (*domain.DashboardSummary, error) {
	return &domain.DashboardSummary{Period: q.Period, Series: []domain.DailyPoint{}}, nil
}

func token(t *testing.T, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u1", "role": role}).SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func serve(h fasthttp.RequestHandler, method, uri, auth string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if auth != "" {
		ctx.Request.Header.Set("Authorization", auth)
	}
	h(ctx)
	return ctx
}

func TestRoutesEnforceRoles(t *testing.T) {
	m := metrics.New()
	r := New(Handlers{
		Health:    apiHandler.NewHealthHandler(okStatus{}, nil, nil),
		Dashboard: apiHandler.NewDashboardHandler(emptyDashboard{}, nil, nil),
	}, Options{
		Auth:          middleware.JWTAuth(secret, "", nil),
		Metrics:       m,
		EnableMetrics: true,
	})
	h := r.Handler

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", "").Response.StatusCode())
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, "/api/v1/admin/dashboard", "").Response.StatusCode())
	assert.Equal(t, http.StatusForbidden, serve(h, http.MethodGet, "/api/v1/admin/dashboard", token(t, "driver")).Response.StatusCode())
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/v1/admin/dashboard?period=today", token(t, "manager")).Response.StatusCode())

	ctx := serve(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	body := string(ctx.Response.Body())
	assert.True(t, strings.Contains(body, `route="/api/v1/admin/dashboard"`), body)
	assert.True(t, strings.Contains(body, `status="403"`), body)
}

func TestRoutesWithoutAuthIgnoreIdentityHeaders(t *testing.T) {
	r := New(Handlers{
		Health:    apiHandler.NewHealthHandler(okStatus{}, nil, nil),
		Dashboard: apiHandler.NewDashboardHandler(emptyDashboard{}, nil, nil),
	}, Options{Metrics: metrics.New()})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(http.MethodGet)
	ctx.Request.SetRequestURI("/api/v1/admin/dashboard?period=today")
	ctx.Request.Header.Set(middleware.HeaderUserID, "u1")
	ctx.Request.Header.Set(middleware.HeaderUserRole, domain.RoleAdmin)
	r.Handler(ctx)

	assert.Equal(t, http.StatusForbidden, ctx.Response.StatusCode())
	assert.Empty(t, ctx.Request.Header.Peek(middleware.HeaderUserRole))
}
