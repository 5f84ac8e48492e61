package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/watchcrew/watchcrew-backend/api/responses"
	"github.com/watchcrew/watchcrew-backend/pkg/config"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
	"github.com/watchcrew/watchcrew-backend/pkg/logger"
)

const readinessTimeout = 3 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WatchCrew-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks every backing dependency before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WatchCrew-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var err error
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if pingErr := dep.Ping(ctx); pingErr != nil {
				err = multierr.Append(err, pkgerrors.Wrap(pkgerrors.CodeDependency, pingErr, name+" unavailable"))
			}
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "readiness check failed"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
