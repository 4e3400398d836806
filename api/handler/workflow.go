package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
	"github.com/fastygo/taskboard/usecase/workflow"
)

// WorkflowHandler runs UI actions against the caller's session. Each request
// is one display cycle: pending messages are returned once and then dropped.
type WorkflowHandler struct {
	baseHandler
	sessions   repository.SessionRepository
	controller *workflow.Controller
	dispatcher *usecase.Dispatcher
	ttl        time.Duration
}

func NewWorkflowHandler(
	sessions repository.SessionRepository,
	controller *workflow.Controller,
	dispatcher *usecase.Dispatcher,
	ttl time.Duration,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
) *WorkflowHandler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &WorkflowHandler{
		baseHandler: newBaseHandler(adapter, logger),
		sessions:    sessions,
		controller:  controller,
		dispatcher:  dispatcher,
		ttl:         ttl,
	}
}

// @Summary Current task board view
// @Tags workflow
// @Router /api/v1/workflow [get]
func (h *WorkflowHandler) Show(ctx *fasthttp.RequestCtx) {
	h.run(ctx, func(context.Context, *domain.Session) error { return nil })
}

// @Summary Run a UI action
// @Tags workflow
// @Router /api/v1/workflow/{action} [post]
func (h *WorkflowHandler) Execute(ctx *fasthttp.RequestCtx) {
	action, _ := ctx.UserValue("action").(string)
	if action == "" {
		h.respondInvalid(ctx, "missing action")
		return
	}

	var req transport.ActionRequest
	if body := ctx.PostBody(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.respondInvalid(ctx, "invalid payload")
			return
		}
	}
	input, err := toInput(req)
	if err != nil {
		h.respondInvalid(ctx, err.Error())
		return
	}

	h.run(ctx, func(stdCtx context.Context, session *domain.Session) error {
		return h.dispatcher.Execute(stdCtx, action, session, input)
	})
}

func (h *WorkflowHandler) run(ctx *fasthttp.RequestCtx, step func(context.Context, *domain.Session) error) {
	sid := httpcontext.SessionID(ctx)
	if sid == "" {
		h.respondInvalid(ctx, "missing session")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	log := h.log(stdCtx)

	session, err := h.loadSession(stdCtx, sid)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	if err := h.controller.Initialize(stdCtx, session); err != nil {
		h.respondError(ctx, err)
		return
	}

	stepErr := step(stdCtx, session)
	if stepErr != nil && !errors.Is(stepErr, domain.ErrValidation) {
		log.Info("workflow action failed", zap.Error(stepErr))
	}

	view := transport.NewSessionView(session, session.DrainMessages(), h.controller.Today())

	session.ExpiresAt = time.Now().Add(h.ttl)
	if err := h.sessions.Save(stdCtx, session); err != nil {
		h.respondError(ctx, fmt.Errorf("save session: %w", err))
		return
	}

	if stepErr != nil {
		h.respondErrorWithData(ctx, stepErr, view)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

// loadSession returns the stored session, starting over when it is missing or expired.
func (h *WorkflowHandler) loadSession(ctx context.Context, sid string) (*domain.Session, error) {
	session, err := h.sessions.Get(ctx, sid)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return domain.NewSession(sid, h.ttl), nil
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	case session.IsExpired(time.Now()):
		if err := h.sessions.Delete(ctx, sid); err != nil {
			h.log(ctx).Warn("failed to drop expired session", zap.Error(err))
		}
		return domain.NewSession(sid, h.ttl), nil
	}
	return session, nil
}

func toInput(req transport.ActionRequest) (workflow.Input, error) {
	in := workflow.Input{ID: req.ID}
	if req.Task != nil {
		form, err := toForm(*req.Task)
		if err != nil {
			return workflow.Input{}, err
		}
		in.Task = &form
	}
	if req.Filter != nil {
		filter, err := toFilter(*req.Filter)
		if err != nil {
			return workflow.Input{}, err
		}
		in.Filter = &filter
	}
	return in, nil
}

func toForm(f transport.TaskForm) (workflow.Form, error) {
	form := workflow.Form{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Owner:       f.Owner,
		Priority:    domain.Priority(strings.ToUpper(strings.TrimSpace(f.Priority))),
		Status:      domain.Status(strings.ToUpper(strings.TrimSpace(f.Status))),
	}
	if strings.TrimSpace(f.DueDate) != "" {
		due, err := domain.ParseDate(f.DueDate)
		if err != nil {
			return workflow.Form{}, domain.WrapError(domain.ErrCodeInvalid, "due_date must be YYYY-MM-DD", domain.ErrInvalidPayload)
		}
		form.DueDate = due
	}
	return form, nil
}

// toFilter reads filter criteria. Unknown priority or status values are rejected.
func toFilter(f transport.FilterForm) (domain.TaskFilter, error) {
	filter := domain.TaskFilter{
		ID:       f.ID,
		Text:     f.Text,
		Owner:    f.Owner,
		Priority: domain.Priority(strings.ToUpper(strings.TrimSpace(f.Priority))),
		Status:   domain.Status(strings.ToUpper(strings.TrimSpace(f.Status))),
	}
	if err := filter.Check(); err != nil {
		return domain.TaskFilter{}, err
	}
	return filter.Normalized(), nil
}
