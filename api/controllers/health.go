package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/adegtyareva/marketpoint-backend/api/responses"
	"github.com/adegtyareva/marketpoint-backend/pkg/config"
	"github.com/adegtyareva/marketpoint-backend/pkg/db"
	pkgerrors "github.com/adegtyareva/marketpoint-backend/pkg/errors"
	"github.com/adegtyareva/marketpoint-backend/pkg/logger"
	"github.com/adegtyareva/marketpoint-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MarketPoint-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when both backing stores answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MarketPoint-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}

		if dbP == nil {
			checks["db"] = "not configured"
		} else if err := dbP.Ping(ctx); err != nil {
			checks["db"] = err.Error()
		}

		if redisP == nil {
			checks["redis"] = "not configured"
		} else if err := redisP.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
		}

		if len(checks) > 0 {
			err := pkgerrors.New(pkgerrors.CodeUnavailable, "dependencies not ready").WithDetails(checks)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
