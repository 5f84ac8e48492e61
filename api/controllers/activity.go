package controllers

import (
	"net/http"
	"strings"

	"github.com/watchcrew/watchcrew-backend/api/responses"
	"github.com/watchcrew/watchcrew-backend/api/validators"
	"github.com/watchcrew/watchcrew-backend/internal/activity"
	"github.com/watchcrew/watchcrew-backend/internal/groups"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
	"github.com/watchcrew/watchcrew-backend/pkg/logger"
	"github.com/watchcrew/watchcrew-backend/pkg/pagination"
)

// ActivityFeed returns the group's cursor-paginated activity feed.
func ActivityFeed(svc activity.Service, membership groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil || membership == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		userID, err := userIDFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		groupID, err := groupIDFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if _, err := membership.RequireMember(ctx, groupID, userID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		feed, err := svc.List(ctx, activity.ListParams{
			GroupID: groupID,
			Cursor:  strings.TrimSpace(r.URL.Query().Get("cursor")),
			Limit:   limit,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, feed)
	}
}
