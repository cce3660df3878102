package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dispatch/api/transport"
	"github.com/fastygo/dispatch/domain"
	boardview "github.com/fastygo/dispatch/internal/board"
	"github.com/fastygo/dispatch/pkg/httpcontext"
	boardUC "github.com/fastygo/dispatch/usecase/board"
	taskUC "github.com/fastygo/dispatch/usecase/task"
)

type boardService interface {
	ResolveMode(raw string) (boardview.Mode, error)
	Board(ctx context.Context, mode boardview.Mode) (*boardUC.Result, error)
	MoveTask(ctx context.Context, in boardUC.MoveInput) (*taskUC.Result, error)
}

type BoardHandler struct {
	baseHandler
	uc boardService
}

func NewBoardHandler(uc boardService, adapter *httpcontext.Adapter, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

type boardResponse struct {
	Mode        boardview.Mode         `json:"mode"`
	Columns     []boardview.Column     `json:"columns"`
	Descriptors []boardview.Descriptor `json:"descriptors"`
	Total       int                    `json:"total"`
}

// @Summary Task board grouped by status or driver
// @Tags admin
// @Router /api/v1/admin/board [get]
func (h *BoardHandler) GetBoard(ctx *fasthttp.RequestCtx) {
	mode, err := h.uc.ResolveMode(queryString(ctx, "group_by"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.uc.Board(stdCtx, mode)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	meta := transport.Meta{"stale": res.Stale}
	if res.Stale {
		meta["cached_at"] = res.CachedAt().Format(time.RFC3339)
	}
	h.respondSuccessMeta(ctx, http.StatusOK, boardResponse{
		Mode:        res.View.Mode,
		Columns:     res.View.Columns,
		Descriptors: res.View.Descriptors(),
		Total:       res.View.TotalCards(),
	}, meta)
}

// @Summary Persist a board drop
// @Tags admin
// @Router /api/v1/admin/board/move [post]
func (h *BoardHandler) MoveTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.callerID(ctx)
	if !ok {
		return
	}
	var req transport.BoardMoveRequest
	if !h.decode(ctx, &req) {
		return
	}
	mode, err := h.uc.ResolveMode(req.GroupBy)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if mode == boardview.ModeDriver {
		problems := make(map[string]string)
		if _, err := uuid.Parse(req.From); err != nil {
			problems["from"] = "must be a driver id"
		}
		if _, err := uuid.Parse(req.To); err != nil {
			problems["to"] = "must be a driver id"
		}
		if verr := domain.NewValidationError("invalid move", problems); verr != nil {
			h.respondError(ctx, verr)
			return
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.uc.MoveTask(stdCtx, boardUC.MoveInput{
		TaskID:  req.TaskID,
		From:    req.From,
		To:      req.To,
		Mode:    mode,
		ActorID: userID,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.requestLogger(stdCtx).Info("board move",
		zap.String("task_id", req.TaskID),
		zap.String("mode", string(mode)),
		zap.String("from", req.From),
		zap.String("to", req.To),
	)
	h.respondWrite(ctx, http.StatusOK, res, res.Buffered)
}
