package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	// CommandsTotal counts command invocations.
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cogbot_commands_total",
			Help: "Total number of bot commands invoked.",
		},
		[]string{"command", "status"}, // status: success, error, check_failed, cooldown
	)

	// ReactionPlans counts planner outcomes.
	ReactionPlans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cogbot_reaction_plans_total",
			Help: "Total number of reaction plans built.",
		},
		[]string{"outcome"}, // direct, combine, substitute, duplicate, empty
	)

	// ReactionsAdded counts individual reaction add calls.
	ReactionsAdded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cogbot_reactions_added_total",
			Help: "Total number of reactions added to messages.",
		},
		[]string{"status"}, // success, error, dry_run
	)

	// HTTPAPICalls counts calls to third-party HTTP APIs.
	HTTPAPICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cogbot_http_api_calls_total",
			Help: "Total number of third-party API calls.",
		},
		[]string{"service", "status"}, // service: imgbb, osu; status: success, error, cache_hit
	)

	// ActiveCommands reports the number of command handlers currently running.
	ActiveCommands = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cogbot_active_commands",
			Help: "Number of currently running command handlers.",
		},
	)
)

// NewRouter returns the metrics HTTP handler.
func NewRouter() http.Handler {
	mux := chi.NewRouter()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Serve runs the Prometheus metrics HTTP server until ctx is cancelled.
// An empty addr disables the endpoint.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		log.Info().Msg("Metrics server address not configured, Prometheus endpoint will not be available.")
		return nil
	}

	srv := &http.Server{Addr: addr, Handler: NewRouter(), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", addr).Msg("Starting Prometheus metrics server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
