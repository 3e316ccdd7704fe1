package v1

import (
	"skillgap/internal/delivery/http/handler"
	"skillgap/internal/delivery/http/middleware"
	"skillgap/internal/pkg/jwt"
	"skillgap/internal/repository"
	"skillgap/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type Deps struct {
	JWT      jwt.Service
	Auth     usecase.AuthUsecase
	Analysis usecase.GapAnalysisUsecase
	Postings repository.PostingRepository
}

func Register(r fiber.Router, d Deps) {
	if r == nil {
		return
	}

	authHandler := handler.NewAuthHandler(d.Auth)
	analysisHandler := handler.NewAnalysisHandler(d.Analysis)

	authGroup := r.Group("/auth")
	authHandler.RegisterRoutes(authGroup)

	authMw := middleware.NewAuthMiddleware(d.JWT)
	protected := r.Group("", authMw.Middleware())
	analysisHandler.RegisterRoutes(protected)
	handler.NewPostingHandler(d.Postings).RegisterRoutes(protected)
}
