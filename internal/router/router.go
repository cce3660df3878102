package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/dispatch/api/handler"
	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/internal/metrics"
	"github.com/fastygo/dispatch/internal/middleware"
)

type Handlers struct {
	Profile      *apiHandler.ProfileHandler
	Task         *apiHandler.TaskHandler
	Board        *apiHandler.BoardHandler
	Audit        *apiHandler.AuditHandler
	Driver       *apiHandler.DriverHandler
	Notification *apiHandler.NotificationHandler
	Push         *apiHandler.PushHandler
	Dashboard    *apiHandler.DashboardHandler
	Health       *apiHandler.HealthHandler
}

// Options carries the cross-cutting pieces of the route table.
type Options struct {
	Auth          middleware.Middleware
	Metrics       *metrics.Metrics
	EnableMetrics bool
}

func New(handlers Handlers, opts Options) *router.Router {
	r := router.New()

	auth := opts.Auth
	if auth == nil {
		auth = anonymous
	}
	staff := middleware.RequireRole(domain.RoleAdmin, domain.RoleManager)
	driver := middleware.RequireRole(domain.RoleDriver)

	// route registers path with the HTTP metrics middleware and the given guards.
	route := func(method, path string, h fasthttp.RequestHandler, guards ...middleware.Middleware) {
		r.Handle(method, path, opts.Metrics.Middleware(path, middleware.Chain(h, guards...)))
	}

	route(fasthttp.MethodGet, "/health", handlers.Health.Check)
	if opts.EnableMetrics {
		r.GET("/metrics", opts.Metrics.Handler())
	}

	// Any authenticated user
	route(fasthttp.MethodGet, "/api/v1/profile", handlers.Profile.GetProfile, auth)
	route(fasthttp.MethodPut, "/api/v1/profile", handlers.Profile.UpdateProfile, auth)
	route(fasthttp.MethodPost, "/api/v1/notifications/subscribe", handlers.Push.Subscribe, auth)
	route(fasthttp.MethodDelete, "/api/v1/notifications/subscribe", handlers.Push.Unsubscribe, auth)
	route(fasthttp.MethodGet, "/api/v1/checklists/{type}", handlers.Driver.GetChecklist, auth)

	// Admin and manager
	route(fasthttp.MethodGet, "/api/v1/admin/tasks", handlers.Task.GetTasks, auth, staff)
	route(fasthttp.MethodPost, "/api/v1/admin/tasks", handlers.Task.CreateTask, auth, staff)
	route(fasthttp.MethodGet, "/api/v1/admin/tasks/{id}", handlers.Task.GetTask, auth, staff)
	route(fasthttp.MethodPut, "/api/v1/admin/tasks/{id}", handlers.Task.UpdateTask, auth, staff)
	route(fasthttp.MethodPatch, "/api/v1/admin/tasks/{id}", handlers.Task.PatchTask, auth, staff)
	route(fasthttp.MethodDelete, "/api/v1/admin/tasks/{id}", handlers.Task.DeleteTask, auth, staff)
	route(fasthttp.MethodGet, "/api/v1/admin/tasks/{id}/audit", handlers.Audit.TaskAudit, auth, staff)
	route(fasthttp.MethodGet, "/api/v1/admin/audit", handlers.Audit.List, auth, staff)
	route(fasthttp.MethodGet, "/api/v1/admin/board", handlers.Board.GetBoard, auth, staff)
	route(fasthttp.MethodPost, "/api/v1/admin/board/move", handlers.Board.MoveTask, auth, staff)
	route(fasthttp.MethodGet, "/api/v1/admin/dashboard", handlers.Dashboard.Summary, auth, staff)
	route(fasthttp.MethodGet, "/api/v1/admin/drivers", handlers.Profile.ListDrivers, auth, staff)

	// Drivers
	route(fasthttp.MethodGet, "/api/v1/driver/tasks", handlers.Driver.GetTasks, auth, driver)
	route(fasthttp.MethodPatch, "/api/v1/driver/tasks/{id}/status", handlers.Driver.UpdateStatus, auth, driver)
	route(fasthttp.MethodGet, "/api/v1/driver/notifications", handlers.Notification.List, auth, driver)
	route(fasthttp.MethodPatch, "/api/v1/driver/notifications", handlers.Notification.Patch, auth, driver)

	return r
}

// anonymous stands in for a missing Auth middleware. Identity headers sent by
// the client are dropped so role guards never trust them.
func anonymous(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Request.Header.Del(middleware.HeaderUserID)
		ctx.Request.Header.Del(middleware.HeaderUserRole)
		next(ctx)
	}
}
