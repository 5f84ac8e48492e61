package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/watchcrew/watchcrew-backend/api/responses"
	"github.com/watchcrew/watchcrew-backend/api/validators"
	"github.com/watchcrew/watchcrew-backend/internal/catalog"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
	"github.com/watchcrew/watchcrew-backend/pkg/logger"
)

// CatalogSearch proxies a multi search against the upstream catalog.
func CatalogSearch(svc catalog.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		query := strings.TrimSpace(r.URL.Query().Get("query"))
		if query == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "query is required"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1000)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		results, err := svc.Search(ctx, query, page)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, results)
	}
}

// CatalogMovie returns upstream movie details.
func CatalogMovie(svc catalog.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathInt64(r, "movieID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		details, err := svc.Movie(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, details)
	}
}

// CatalogTV returns upstream TV show details.
func CatalogTV(svc catalog.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathInt64(r, "tvID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("season")); raw != "" {
			season, convErr := strconv.Atoi(raw)
			if convErr != nil || season < 0 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "season must be a non-negative integer"))
				return
			}

			details, seasonErr := svc.TVSeason(ctx, id, season)
			if seasonErr != nil {
				responses.WriteError(ctx, logg, w, seasonErr)
				return
			}

			responses.WriteSuccess(w, details)
			return
		}

		details, err := svc.TV(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, details)
	}
}

// CatalogPerson returns upstream person details.
func CatalogPerson(svc catalog.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathInt64(r, "personID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		details, err := svc.Person(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, details)
	}
}

// CatalogTrending returns the upstream trending list.
func CatalogTrending(svc catalog.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1000)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		mediaType := strings.TrimSpace(r.URL.Query().Get("media_type"))
		if mediaType == "" {
			mediaType = "all"
		}
		window := strings.TrimSpace(r.URL.Query().Get("window"))

		results, err := svc.Trending(ctx, mediaType, window, page)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, results)
	}
}

func pathInt64(r *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, name+" must be a positive integer")
	}
	return value, nil
}
