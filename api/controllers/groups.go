package controllers

import (
	"net/http"

	"github.com/watchcrew/watchcrew-backend/api/responses"
	"github.com/watchcrew/watchcrew-backend/api/validators"
	"github.com/watchcrew/watchcrew-backend/internal/groups"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
	"github.com/watchcrew/watchcrew-backend/pkg/logger"
)

// GroupCreate creates a group owned by the caller.
func GroupCreate(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group service unavailable"))
			return
		}

		userID, err := userIDFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body groups.CreateGroupInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		group, err := svc.Create(ctx, userID, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, group)
	}
}

// GroupList returns every group the caller belongs to.
func GroupList(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group service unavailable"))
			return
		}

		userID, err := userIDFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.List(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// GroupGet returns one group the caller belongs to.
func GroupGet(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group service unavailable"))
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

		group, err := svc.Get(ctx, userID, groupID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, group)
	}
}

// GroupUpdate edits group metadata. Owners and admins only.
func GroupUpdate(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group service unavailable"))
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

		var body groups.UpdateGroupInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		group, err := svc.Update(ctx, userID, groupID, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, group)
	}
}

// GroupDelete removes the group and all dependent rows. Owners only.
func GroupDelete(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group service unavailable"))
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

		if err := svc.Delete(ctx, userID, groupID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GroupMemberAdd adds a user to the group directly. Owners and admins only.
func GroupMemberAdd(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group service unavailable"))
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

		var body groups.AddMemberInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		member, err := svc.AddMember(ctx, userID, groupID, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, member)
	}
}

// GroupMemberRemove removes a member, or lets a member leave.
func GroupMemberRemove(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group service unavailable"))
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

		targetID, err := pathUUID(r, "userID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.RemoveMember(ctx, userID, groupID, targetID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// GroupMemberList returns the group roster.
func GroupMemberList(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group service unavailable"))
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

		members, err := svc.ListMembers(ctx, userID, groupID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, members)
	}
}
