package handler

import (
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase/workflow"
)

// TaskHandler exposes read-only access to the task store.
type TaskHandler struct {
	baseHandler
	tasks      repository.TaskRepository
	controller *workflow.Controller
}

func NewTaskHandler(tasks repository.TaskRepository, controller *workflow.Controller, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		tasks:       tasks,
		controller:  controller,
	}
}

// @Summary List or filter tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) List(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()

	var id int64
	if raw := string(args.Peek("id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			h.respondInvalid(ctx, "id must be a positive integer")
			return
		}
		id = parsed
	}

	filter, err := toFilter(transport.FilterForm{
		ID:       id,
		Text:     string(args.Peek("q")),
		Owner:    string(args.Peek("owner")),
		Priority: string(args.Peek("priority")),
		Status:   string(args.Peek("status")),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var tasks []domain.Task
	if filter.IsEmpty() {
		tasks, err = h.tasks.ListAll(stdCtx)
	} else {
		tasks, err = h.tasks.Filter(stdCtx, filter)
	}
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewTaskViews(tasks, h.controller.Today()))
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) Get(ctx *fasthttp.RequestCtx) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.respondInvalid(ctx, "id must be a positive integer")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.tasks.FindByID(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewTaskView(*task, h.controller.Today()))
}
