package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"mockmate/internal/auth"
	"mockmate/internal/models"
	"mockmate/internal/repositories"
	"mockmate/internal/sanitizer"
	"mockmate/internal/session"
	"mockmate/internal/utils"
)

var errSessionNotFound = fmt.Errorf("capture session not open: %w", repositories.ErrNotFound)

// errorResponse maps domain errors onto a status and a client-safe payload.
// Remote failures are reported generically; the cause is only logged.
func errorResponse(err error) (int, models.ErrorResponse) {
	var errResp *models.ErrorResponse
	switch {
	case errors.As(err, &errResp):
		return http.StatusUnprocessableEntity, *errResp
	case errors.Is(err, session.ErrAnswerTooShort):
		return http.StatusUnprocessableEntity, models.ErrorResponse{
			Code:    "answer_too_short",
			Message: fmt.Sprintf("Your answer should be at least %d characters", models.MinAnswerLength),
		}
	case errors.Is(err, models.ErrValidationFailed):
		return http.StatusUnprocessableEntity, models.ErrorResponse{Code: models.CodeValidationFailed, Message: err.Error()}
	case errors.Is(err, models.ErrAuthRequired):
		return http.StatusUnauthorized, models.ErrorResponse{Code: models.CodeAuthRequired, Message: "User not authenticated"}
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, models.ErrorResponse{Code: "forbidden", Message: "You do not have access to this interview"}
	case errors.Is(err, errSessionNotFound):
		return http.StatusNotFound, models.ErrorResponse{Code: "session_not_found", Message: "No capture session is open for this question"}
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound, models.ErrorResponse{Code: "not_found", Message: "Interview or question not found"}
	case errors.Is(err, session.ErrSessionClosed):
		return http.StatusConflict, models.ErrorResponse{Code: "session_closed", Message: "The capture session is closed"}
	case errors.Is(err, session.ErrSessionReset):
		return http.StatusConflict, models.ErrorResponse{Code: "session_reset", Message: "The recording was restarted before this operation finished"}
	case errors.Is(err, session.ErrInvalidTransition):
		return http.StatusConflict, models.ErrorResponse{Code: "invalid_transition", Message: err.Error()}
	case errors.Is(err, sanitizer.ErrMalformedAIResponse):
		return http.StatusBadGateway, models.ErrorResponse{Code: "ai_malformed_response", Message: "The AI service returned an unusable response, please try again"}
	case errors.Is(err, models.ErrRemoteOperationFailed):
		return http.StatusBadGateway, models.ErrorResponse{Code: "remote_operation_failed", Message: "A remote service failed, please try again"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, models.ErrorResponse{Code: "timeout", Message: "The request timed out"}
	default:
		return http.StatusInternalServerError, models.ErrorResponse{Code: "internal_error", Message: "Internal server error"}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, resp := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("user_id", auth.UserIDFromContext(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	utils.JSON(w, status, resp)
}
