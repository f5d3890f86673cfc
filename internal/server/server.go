package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sergss/geomark/internal/batch"
	"github.com/sergss/geomark/internal/geocoding"
	"github.com/sergss/geomark/internal/metrics"
	"github.com/sergss/geomark/internal/presenter"
	"github.com/sergss/geomark/internal/repository"
	"github.com/sergss/geomark/internal/settings"
)

// ProviderFactory builds a geocoding provider from the API key currently in
// the settings store. It is called at run start so a key saved through the
// settings endpoint takes effect without a restart.
type ProviderFactory func(apiKey string) (geocoding.Provider, error)

// Pinger is the readiness probe of an optional backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps collects everything the HTTP layer is wired with.
type Deps struct {
	Logger       *slog.Logger
	Runner       *batch.Runner
	View         *presenter.ViewState
	Settings     *settings.Store
	History      repository.Interface
	Metrics      *metrics.Metrics
	NewProvider  ProviderFactory
	ProviderName string
	DB           Pinger // optional; nil when history is disabled
}

// Server exposes the settings form, the batch search operations, and the
// live view state over HTTP. At most one search session runs at a time.
type Server struct {
	log          *slog.Logger
	baseCtx      context.Context
	runner       *batch.Runner
	view         *presenter.ViewState
	settings     *settings.Store
	history      repository.Interface
	metrics      *metrics.Metrics
	newProvider  ProviderFactory
	providerName string
	db           Pinger

	mu      sync.Mutex
	session *batch.Session
}

// New creates the server. baseCtx bounds the lifetime of background runs; it
// should be the process context so an in-flight run survives the request that
// started it but not a shutdown.
func New(baseCtx context.Context, deps Deps) *Server {
	return &Server{
		log:          deps.Logger,
		baseCtx:      baseCtx,
		runner:       deps.Runner,
		view:         deps.View,
		settings:     deps.Settings,
		history:      deps.History,
		metrics:      deps.Metrics,
		newProvider:  deps.NewProvider,
		providerName: deps.ProviderName,
		db:           deps.DB,
	}
}

// Router builds the HTTP routes, including the prometheus endpoint for the
// given registry.
func (s *Server) Router(reg *prometheus.Registry) *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handlePutSettings).Methods(http.MethodPut)
	api.HandleFunc("/search", s.handleStartSearch).Methods(http.MethodPost)
	api.HandleFunc("/search/cancel", s.handleCancelSearch).Methods(http.MethodPost)
	api.HandleFunc("/search/session", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)

	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return router
}
