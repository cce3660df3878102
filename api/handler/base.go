package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dispatch/api/transport"
	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/internal/middleware"
	"github.com/fastygo/dispatch/pkg/httpcontext"
	appLogger "github.com/fastygo/dispatch/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondSuccessMeta(ctx *fasthttp.RequestCtx, status int, data, meta interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, meta))
}

// respondWrite answers a write: 202 with meta.buffered when the write was
// queued for replay, status otherwise.
func (h baseHandler) respondWrite(ctx *fasthttp.RequestCtx, status int, data interface{}, buffered bool) {
	if buffered {
		h.respondJSON(ctx, http.StatusAccepted, transport.NewBuffered(data))
		return
	}
	h.respondSuccess(ctx, status, data)
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		h.respondJSON(ctx, status, transport.NewFieldError(code, vErr.Message, vErr.Fields))
		return
	}

	message := err.Error()
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", string(ctx.Path())),
			zap.String("request_id", string(ctx.Response.Header.Peek("X-Request-ID"))),
			zap.Error(err),
		)
		if status == http.StatusInternalServerError {
			message = "internal error"
		} else {
			message = "service temporarily unavailable"
		}
	}
	h.respondJSON(ctx, status, transport.NewError(code, message, nil))
}

// requestLogger is the handler logger enriched with the request and user ids of stdCtx.
func (h baseHandler) requestLogger(stdCtx context.Context) *zap.Logger {
	return appLogger.WithRequestID(stdCtx, h.logger)
}

// callerID returns the authenticated user id, answering 401 when it is missing.
func (h baseHandler) callerID(ctx *fasthttp.RequestCtx) (string, bool) {
	userID := string(ctx.Request.Header.Peek(middleware.HeaderUserID))
	if userID == "" {
		h.respondError(ctx, domain.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

// decode unmarshals and validates the request body, answering 400 on failure.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := transport.Decode(ctx.PostBody(), dst); err != nil {
		h.respondError(ctx, err)
		return false
	}
	return true
}

// pathID returns the UUID path parameter name, answering 400 when it is malformed.
func (h baseHandler) pathID(ctx *fasthttp.RequestCtx, name string) (string, bool) {
	id := pathParam(ctx, name)
	if _, err := uuid.Parse(id); err != nil {
		h.respondError(ctx, domain.NewValidationError("invalid path", map[string]string{name: "must be a UUID"}))
		return "", false
	}
	return id, true
}

func pathParam(ctx *fasthttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}

func queryString(ctx *fasthttp.RequestCtx, name string) string {
	return string(ctx.QueryArgs().Peek(name))
}

func queryInt(ctx *fasthttp.RequestCtx, name string, fallback int) int {
	if v, err := strconv.Atoi(queryString(ctx, name)); err == nil {
		return v
	}
	return fallback
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	case domain.IsDomainError(err, domain.ErrCodeUnavailable):
		return http.StatusServiceUnavailable, string(domain.ErrCodeUnavailable)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
