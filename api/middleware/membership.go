package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/watchcrew/watchcrew-backend/api/responses"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
	"github.com/watchcrew/watchcrew-backend/pkg/logger"
)

// GroupContext parses the {groupID} route parameter and seeds it into the
// request context and logger. Membership and role checks happen in the
// services so error shapes stay consistent between routed and direct calls.
func GroupContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := chi.URLParam(r, "groupID")
			groupID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid group id"))
				return
			}

			ctx = WithGroupID(ctx, groupID.String())
			if logg != nil {
				ctx = logg.WithGroupID(ctx, groupID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
