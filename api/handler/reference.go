package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/usecase"
	"github.com/fastygo/taskboard/usecase/workflow"
)

// ReferenceHandler serves the static choices a task form offers.
type ReferenceHandler struct {
	baseHandler
	owners     []string
	controller *workflow.Controller
	dispatcher *usecase.Dispatcher
}

func NewReferenceHandler(owners []string, controller *workflow.Controller, dispatcher *usecase.Dispatcher, adapter *httpcontext.Adapter, logger *zap.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		baseHandler: newBaseHandler(adapter, logger),
		owners:      owners,
		controller:  controller,
		dispatcher:  dispatcher,
	}
}

// @Summary Form reference data
// @Tags reference
// @Router /api/v1/reference [get]
func (h *ReferenceHandler) Get(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, transport.NewReferenceView(h.owners, h.dispatcher.Actions(), h.controller.Today()))
}
