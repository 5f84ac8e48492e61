package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/watchcrew/watchcrew-backend/api/controllers"
	"github.com/watchcrew/watchcrew-backend/api/middleware"
	"github.com/watchcrew/watchcrew-backend/internal/activity"
	"github.com/watchcrew/watchcrew-backend/internal/auth"
	"github.com/watchcrew/watchcrew-backend/internal/catalog"
	"github.com/watchcrew/watchcrew-backend/internal/groups"
	"github.com/watchcrew/watchcrew-backend/internal/invites"
	"github.com/watchcrew/watchcrew-backend/internal/profiles"
	"github.com/watchcrew/watchcrew-backend/internal/schedules"
	"github.com/watchcrew/watchcrew-backend/pkg/auth/session"
	"github.com/watchcrew/watchcrew-backend/pkg/config"
	"github.com/watchcrew/watchcrew-backend/pkg/logger"
	"github.com/watchcrew/watchcrew-backend/pkg/metrics"
)

// Deps bundles everything the router needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
	Pingers     map[string]controllers.Pinger

	Sessions         session.AccessSessionChecker
	IdempotencyStore middleware.IdempotencyStore

	Auth      auth.Service
	Profiles  profiles.Service
	Groups    groups.Service
	Schedules schedules.Service
	Invites   invites.Service
	Activity  activity.Service
	Catalog   catalog.Gateway
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.Idempotency(deps.IdempotencyStore, logg)).
			Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
	})

	// Invite previews are public so a link can show the group before login.
	r.Get("/api/v1/invites/{code}", controllers.InviteResolve(deps.Invites, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.IdempotencyStore, logg))

		r.Post("/auth/logout", controllers.AuthLogout(deps.Auth, logg))

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/me", controllers.ProfileGet(deps.Profiles, logg))
			r.Put("/me", controllers.ProfileUpdate(deps.Profiles, logg))
		})

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", controllers.GroupCreate(deps.Groups, logg))
			r.Get("/", controllers.GroupList(deps.Groups, logg))

			r.Route("/{groupID}", func(r chi.Router) {
				r.Use(middleware.GroupContext(logg))

				r.Get("/", controllers.GroupGet(deps.Groups, logg))
				r.Put("/", controllers.GroupUpdate(deps.Groups, logg))
				r.Delete("/", controllers.GroupDelete(deps.Groups, logg))

				r.Route("/members", func(r chi.Router) {
					r.Get("/", controllers.GroupMemberList(deps.Groups, logg))
					r.Post("/", controllers.GroupMemberAdd(deps.Groups, logg))
					r.Delete("/{userID}", controllers.GroupMemberRemove(deps.Groups, logg))
				})

				r.Route("/schedules", func(r chi.Router) {
					r.Post("/", controllers.ScheduleCreate(deps.Schedules, logg))
					r.Get("/", controllers.ScheduleList(deps.Schedules, logg))

					r.Route("/{scheduleID}", func(r chi.Router) {
						r.Delete("/", controllers.ScheduleDelete(deps.Schedules, logg))
						r.Put("/date", controllers.ScheduleSetDate(deps.Schedules, logg))
						r.Delete("/date", controllers.ScheduleClearDate(deps.Schedules, logg))
						r.Post("/watched", controllers.ScheduleMarkWatched(deps.Schedules, logg))
					r.Delete("/watched", controllers.ScheduleUnmarkWatched(deps.Schedules, logg))
						r.Post("/vote", controllers.ScheduleToggleVote(deps.Schedules, logg))
						r.Post("/interest", controllers.ScheduleToggleInterest(deps.Schedules, logg))
					})
				})

				r.Route("/invites", func(r chi.Router) {
					r.Post("/", controllers.InviteCreate(deps.Invites, logg))
					r.Get("/", controllers.InviteList(deps.Invites, logg))
					r.Delete("/{inviteID}", controllers.InviteRevoke(deps.Invites, logg))
				})

				r.Get("/activity", controllers.ActivityFeed(deps.Activity, deps.Groups, logg))
			})
		})

		r.Post("/invites/{code}/accept", controllers.InviteAccept(deps.Invites, logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/search", controllers.CatalogSearch(deps.Catalog, logg))
			r.Get("/movies/{movieID}", controllers.CatalogMovie(deps.Catalog, logg))
			r.Get("/tv/{tvID}", controllers.CatalogTV(deps.Catalog, logg))
			r.Get("/people/{personID}", controllers.CatalogPerson(deps.Catalog, logg))
			r.Get("/trending", controllers.CatalogTrending(deps.Catalog, logg))
		})
	})

	return r
}
