package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskboard/api/handler"
)

type Handlers struct {
	Workflow  *apiHandler.WorkflowHandler
	Reference *apiHandler.ReferenceHandler
	Task      *apiHandler.TaskHandler
	Health    *apiHandler.HealthHandler
}

// New builds the HTTP routes. Workflow routes go through session, which binds the request to a UI session.
func New(handlers Handlers, session func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	r.GET("/api/v1/reference", handlers.Reference.Get)

	r.GET("/api/v1/workflow", session(handlers.Workflow.Show))
	r.POST("/api/v1/workflow/{action}", session(handlers.Workflow.Execute))

	r.GET("/api/v1/tasks", handlers.Task.List)
	r.GET("/api/v1/tasks/{id}", handlers.Task.Get)

	return r
}
