package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dispatch/api/transport"
	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/pkg/httpcontext"
)

type profileService interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	Drivers(ctx context.Context) ([]domain.Profile, error)
	UpdateName(ctx context.Context, userID, name string) (*domain.Profile, error)
}

type ProfileHandler struct {
	baseHandler
	uc profileService
}

func NewProfileHandler(uc profileService, adapter *httpcontext.Adapter, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Get own profile
// @Tags profile
// @Success 200 {object} transport.Envelope
// @Router /api/v1/profile [get]
func (h *ProfileHandler) GetProfile(ctx *fasthttp.RequestCtx) {
	userID, ok := h.callerID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	profile, err := h.uc.GetProfile(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, profile)
}

// @Summary Update own display name
// @Tags profile
// @Accept json
// @Produce json
// @Router /api/v1/profile [put]
func (h *ProfileHandler) UpdateProfile(ctx *fasthttp.RequestCtx) {
	userID, ok := h.callerID(ctx)
	if !ok {
		return
	}
	var req transport.ProfileUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateName(stdCtx, userID, req.Name)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary List drivers
// @Tags admin
// @Router /api/v1/admin/drivers [get]
func (h *ProfileHandler) ListDrivers(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	drivers, err := h.uc.Drivers(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, drivers)
}
