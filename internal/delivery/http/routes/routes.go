package routes

import (
	"skillgap/internal/database"
	"skillgap/internal/delivery/http/handler"
	v1 "skillgap/internal/delivery/http/routes/v1"
	"skillgap/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health *handler.HealthHandler
	deps   v1.Deps
	wsh    *ws.Handler
}

func NewRegistry(db database.DB, deps v1.Deps, wsh *ws.Handler) *Registry {
	return &Registry{
		health: handler.NewHealthHandler(db),
		deps:   deps,
		wsh:    wsh,
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.health.RegisterRoutes(app)

	api := app.Group("/api")
	v1.Register(api.Group("/v1"), r.deps)

	if r.wsh != nil {
		app.Get("/ws/analysis", r.wsh.HandleAnalysisWS)
	}
}
