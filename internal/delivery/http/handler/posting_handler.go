package handler

import (
	"strconv"
	"strings"

	"skillgap/internal/delivery/http/dto"
	"skillgap/internal/delivery/http/middleware"
	"skillgap/internal/pkg/response"
	"skillgap/internal/repository"

	"github.com/gofiber/fiber/v3"
)

const (
	defaultPostingLimit = 50
	maxPostingLimit     = 200
)

type PostingHandler struct {
	postings repository.PostingRepository
}

func NewPostingHandler(postings repository.PostingRepository) *PostingHandler {
	return &PostingHandler{postings: postings}
}

func (h *PostingHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/postings", h.List)
}

func (h *PostingHandler) List(c fiber.Ctx) error {
	limit := queryInt(c, "limit", defaultPostingLimit)
	if limit <= 0 {
		limit = defaultPostingLimit
	}
	if limit > maxPostingLimit {
		limit = maxPostingLimit
	}

	filter := repository.PostingFilter{
		DaysBack: queryInt(c, "days_back", 0),
		Limit:    limit,
	}
	if industry := strings.TrimSpace(c.Query("industry")); industry != "" {
		filter.Industries = []string{industry}
	}

	jobs, err := h.postings.ListRecent(c.Context(), filter)
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPostingListResponse(jobs))
}

func queryInt(c fiber.Ctx, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
