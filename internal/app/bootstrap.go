package app

import (
	"fmt"
	"strings"

	"skillgap/internal/config"
	"skillgap/internal/delivery/http/middleware"
	"skillgap/internal/delivery/http/routes"
	v1 "skillgap/internal/delivery/http/routes/v1"
	"skillgap/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func Bootstrap(cfg config.Config) (*App, func() error, error) {
	c, err := NewContainer(cfg, nil)
	if err != nil {
		return nil, nil, err
	}

	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})

	errMw := middleware.NewErrorMiddleware()
	accessMw := middleware.NewAccessLogMiddleware(c.Logger)
	f.Use(errMw.Middleware())
	f.Use(accessMw.Middleware())

	registry := routes.NewRegistry(c.DB, v1.Deps{
		JWT:      c.JWT,
		Auth:     c.Auth,
		Analysis: c.Analysis,
		Postings: c.Postings,
	}, ws.NewHandler(c.Hub, c.Logger))
	registry.Register(f)

	go c.Hub.Run()

	return &App{Fiber: f, Container: c}, c.Close, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
