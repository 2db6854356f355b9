package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"mockmate/internal/auth"
	"mockmate/internal/middleware"
	"mockmate/internal/models"
	"mockmate/internal/utils"
)

type ThemeService interface {
	Load(ctx context.Context, userID string) (models.Theme, error)
	Save(ctx context.Context, userID string, theme models.Theme) error
}

type PreferenceHandler struct {
	themes ThemeService
	logger *zap.Logger
}

func NewPreferenceHandler(themes ThemeService, logger *zap.Logger) *PreferenceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceHandler{themes: themes, logger: logger}
}

func (h *PreferenceHandler) GetThemeHandler(w http.ResponseWriter, r *http.Request) {
	theme, err := h.themes.Load(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, models.ThemeResponse{Theme: theme})
}

func (h *PreferenceHandler) PutThemeHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.ThemeRequest](r)
	theme := models.Theme(req.Theme)
	if err := h.themes.Save(r.Context(), auth.UserIDFromContext(r.Context()), theme); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, models.ThemeResponse{Theme: theme})
}
