package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/talx-hub/coinledger/internal/api/dto"
	"github.com/talx-hub/coinledger/internal/model"
	"github.com/talx-hub/coinledger/internal/utils/auth"
)

func unauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, dto.Fail("authentication failed"))
}

func Authentication(secret []byte, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authFunc := func(w http.ResponseWriter, r *http.Request) {
			jwtCookie, err := r.Cookie(model.AdminTokenCookie)
			if err != nil {
				log.LogAttrs(r.Context(),
					slog.LevelWarn,
					"failed to find token in request",
				)
				unauthorized(w, r)
				return
			}

			claims, err := auth.CheckToken(jwtCookie.Value, secret)
			if err != nil {
				log.LogAttrs(r.Context(),
					slog.LevelWarn,
					"authentication failed",
					slog.Any(model.KeyLoggerError, err),
				)
				unauthorized(w, r)
				return
			}

			idCtx := context.WithValue(
				r.Context(), model.KeyContextAdminID, claims.AdminID)
			next.ServeHTTP(w, r.WithContext(idCtx))
		}
		return http.HandlerFunc(authFunc)
	}
}
