package handler

import (
	"errors"

	"skillgap/internal/delivery/http/dto"
	"skillgap/internal/delivery/http/middleware"
	"skillgap/internal/pkg/response"
	"skillgap/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type AnalysisHandler struct {
	uc usecase.GapAnalysisUsecase
}

type analyzeRequest struct {
	TargetIndustry      string  `json:"target_industry"`
	Limit               int     `json:"limit"`
	DaysBack            int     `json:"days_back"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
}

func NewAnalysisHandler(uc usecase.GapAnalysisUsecase) *AnalysisHandler {
	return &AnalysisHandler{uc: uc}
}

func (h *AnalysisHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/curricula")
	grp.Post("/:curriculum_id/analyze", h.Analyze)
	grp.Get("/:curriculum_id/analysis/latest", h.Latest)
}

func (h *AnalysisHandler) Analyze(c fiber.Ctx) error {
	curriculumID, err := uuid.Parse(c.Params("curriculum_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req analyzeRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}
	}

	outcome, err := h.uc.Analyze(c.Context(), curriculumID, usecase.AnalyzeOptions{
		TargetIndustry:      req.TargetIndustry,
		Limit:               req.Limit,
		DaysBack:            req.DaysBack,
		SimilarityThreshold: req.SimilarityThreshold,
	})
	if err != nil {
		return mapAnalysisUsecaseError(err)
	}

	if !outcome.Success {
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, outcome.Message,
			dto.AnalysisFailureResponse{Reason: outcome.Reason, Message: outcome.Message}, nil)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewAnalysisResponse(*outcome.Snapshot))
}

func (h *AnalysisHandler) Latest(c fiber.Ctx) error {
	curriculumID, err := uuid.Parse(c.Params("curriculum_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	snap, err := h.uc.LatestSnapshot(c.Context(), curriculumID)
	if err != nil {
		return mapAnalysisUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewAnalysisResponse(snap))
}

func mapAnalysisUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrCurriculumNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Curriculum not found", nil, err)
	case errors.Is(err, usecase.ErrSnapshotNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "No analysis found for curriculum", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrAnalysisInProgress):
		return middleware.NewAppError(fiber.StatusConflict, "An analysis for this curriculum is already running", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
