package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/watchcrew/watchcrew-backend/api/responses"
	"github.com/watchcrew/watchcrew-backend/api/validators"
	"github.com/watchcrew/watchcrew-backend/internal/invites"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
	"github.com/watchcrew/watchcrew-backend/pkg/logger"
)

// InviteCreate mints a shareable invite link. Owners and admins only.
func InviteCreate(svc invites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invite service unavailable"))
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

		var body invites.CreateInviteInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		invite, err := svc.Create(ctx, userID, groupID, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, invite)
	}
}

// InviteList returns the group's invite links. Owners and admins only.
func InviteList(svc invites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invite service unavailable"))
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

// InviteRevoke deletes an invite link. Owners and admins only.
func InviteRevoke(svc invites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invite service unavailable"))
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

		inviteID, err := pathUUID(r, "inviteID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Revoke(ctx, userID, groupID, inviteID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "revoked"})
	}
}

// InviteResolve previews an invite without joining. No auth required.
func InviteResolve(svc invites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invite service unavailable"))
			return
		}

		preview, err := svc.Resolve(ctx, chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, preview)
	}
}

// InviteAccept joins the caller to the invite's group.
func InviteAccept(svc invites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invite service unavailable"))
			return
		}

		userID, err := userIDFrom(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Accept(ctx, userID, chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
