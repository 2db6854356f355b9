package auth

import (
	"net/http"

	"go.uber.org/zap"

	"mockmate/internal/models"
	"mockmate/internal/utils"
)

// RequireUser rejects requests without a valid token and stores the user id in the context.
func RequireUser(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := VerifyToken(r, secret)
			if err != nil {
				logger.Debug("rejected unauthenticated request", zap.String("path", r.URL.Path), zap.Error(err))
				unauthorized(w)
				return
			}
			userID, err := GetUserIDFromClaims(claims)
			if err != nil {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	utils.Error(w, http.StatusUnauthorized, models.CodeAuthRequired, "User not authenticated")
}
