package controllers

import (
	"net/http"

	"github.com/watchcrew/watchcrew-backend/api/responses"
	"github.com/watchcrew/watchcrew-backend/api/validators"
	"github.com/watchcrew/watchcrew-backend/internal/schedules"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
	"github.com/watchcrew/watchcrew-backend/pkg/logger"
)

// ScheduleCreate adds a title to the group watchlist.
func ScheduleCreate(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schedule service unavailable"))
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

		var body schedules.CreateScheduleInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		schedule, err := svc.Create(ctx, userID, groupID, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, schedule)
	}
}

// ScheduleList returns the group watchlist with vote and interest tallies.
func ScheduleList(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schedule service unavailable"))
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

		items, err := svc.List(ctx, userID, groupID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// ScheduleDelete removes a title from the watchlist.
func ScheduleDelete(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schedule service unavailable"))
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

		scheduleID, err := pathUUID(r, "scheduleID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, userID, groupID, scheduleID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ScheduleSetDate schedules a watchlist entry for a date.
func ScheduleSetDate(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schedule service unavailable"))
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

		scheduleID, err := pathUUID(r, "scheduleID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body schedules.SetDateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		schedule, err := svc.SetDate(ctx, userID, groupID, scheduleID, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, schedule)
	}
}

// ScheduleClearDate puts the entry back on the unscheduled pile.
func ScheduleClearDate(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schedule service unavailable"))
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

		scheduleID, err := pathUUID(r, "scheduleID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		schedule, err := svc.ClearDate(ctx, userID, groupID, scheduleID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, schedule)
	}
}

// ScheduleMarkWatched flags the entry as watched and drops its date.
func ScheduleMarkWatched(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schedule service unavailable"))
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

		scheduleID, err := pathUUID(r, "scheduleID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		schedule, err := svc.MarkWatched(ctx, userID, groupID, scheduleID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, schedule)
	}
}

// ScheduleUnmarkWatched returns the entry to unwatched without restoring its date.
func ScheduleUnmarkWatched(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schedule service unavailable"))
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

		scheduleID, err := pathUUID(r, "scheduleID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		schedule, err := svc.UnmarkWatched(ctx, userID, groupID, scheduleID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, schedule)
	}
}

// ScheduleToggleVote flips the caller's vote on the entry.
func ScheduleToggleVote(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schedule service unavailable"))
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

		scheduleID, err := pathUUID(r, "scheduleID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		state, err := svc.ToggleVote(ctx, userID, groupID, scheduleID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}

// ScheduleToggleInterest records, flips, or clears the caller's interest.
func ScheduleToggleInterest(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schedule service unavailable"))
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

		scheduleID, err := pathUUID(r, "scheduleID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body schedules.ToggleInterestInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		state, err := svc.ToggleInterest(ctx, userID, groupID, scheduleID, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}
