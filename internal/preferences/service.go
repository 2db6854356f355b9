// Package preferences persists the per-user UI theme.
package preferences

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mockmate/internal/models"
)

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

func themeKey(userID string) string {
	return "preferences:" + userID + ":theme"
}

// Load returns the stored theme. Missing or unrecognised values read as light.
func (s *Service) Load(ctx context.Context, userID string) (models.Theme, error) {
	if userID == "" {
		return models.ThemeLight, models.ErrAuthRequired
	}
	raw, err := s.store.Get(ctx, themeKey(userID))
	if errors.Is(err, ErrNotSet) {
		return models.ThemeLight, nil
	}
	if err != nil {
		s.logger.Error("failed to load theme", zap.String("user_id", userID), zap.Error(err))
		return models.ThemeLight, fmt.Errorf("%w: %v", models.ErrRemoteOperationFailed, err)
	}
	theme, ok := models.ParseTheme(raw)
	if !ok {
		s.logger.Warn("unknown stored theme", zap.String("user_id", userID), zap.String("value", raw))
	}
	return theme, nil
}

// Save writes the theme on change.
func (s *Service) Save(ctx context.Context, userID string, theme models.Theme) error {
	if userID == "" {
		return models.ErrAuthRequired
	}
	if _, ok := models.ParseTheme(string(theme)); !ok {
		return fmt.Errorf("%w: unknown theme %q", models.ErrValidationFailed, theme)
	}
	if err := s.store.Set(ctx, themeKey(userID), string(theme)); err != nil {
		s.logger.Error("failed to save theme", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("%w: %v", models.ErrRemoteOperationFailed, err)
	}
	return nil
}
