package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mockmate/internal/auth"
	"mockmate/internal/middleware"
	"mockmate/internal/models"
	"mockmate/internal/utils"
)

type InterviewService interface {
	Create(ctx context.Context, userID string, req *models.InterviewRequest) (*models.InterviewProfile, error)
	List(ctx context.Context, userID string) ([]models.InterviewProfile, error)
	Get(ctx context.Context, userID, id string) (*models.InterviewProfile, error)
	Update(ctx context.Context, userID, id string, req *models.InterviewRequest) (*models.InterviewProfile, error)
	Delete(ctx context.Context, userID, id string) error
	Report(ctx context.Context, userID, id string) (*models.FeedbackReport, error)
}

type InterviewHandler struct {
	service InterviewService
	logger  *zap.Logger
}

func NewInterviewHandler(service InterviewService, logger *zap.Logger) *InterviewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterviewHandler{service: service, logger: logger}
}

func (h *InterviewHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.InterviewRequest](r)
	profile, err := h.service.Create(r.Context(), auth.UserIDFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusCreated, profile)
}

func (h *InterviewHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, models.InterviewsResponse{Total: len(profiles), Items: profiles})
}

func (h *InterviewHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Get(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, profile)
}

func (h *InterviewHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.UpdateInterviewRequest](r)
	profile, err := h.service.Update(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), &req.InterviewRequest)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, profile)
}

func (h *InterviewHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InterviewHandler) FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, report)
}
