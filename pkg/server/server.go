// Package server assembles the HTTP surface of the store: API routes,
// request logging, panic recovery, compression and prometheus metrics.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	idb "github.com/josefjadrny/go-idb"
	"github.com/josefjadrny/go-idb/pkg/api"
	"github.com/josefjadrny/go-idb/pkg/database"
	"github.com/josefjadrny/go-idb/pkg/logging"
	"github.com/josefjadrny/go-idb/pkg/metrics"
)

// Server holds references to the database, router and metrics registry.
type Server struct {
	router   *mux.Router
	handler  http.Handler
	registry *prometheus.Registry
	logger   logging.Logger
}

// NewServer creates a new instance of Server serving db.
func NewServer(db *database.DB, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Server{
		router:   mux.NewRouter(),
		registry: newMetricsRegistry(),
		logger:   logger,
	}
	s.registry.MustRegister(db.Metrics()...)
	s.registry.MustRegister(logger.Metrics()...)

	api.NewHandler(db, logger).RegisterRoutes(s.router)
	s.router.Path("/metrics").Handler(promhttp.InstrumentMetricHandler(
		s.registry,
		promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}),
	))

	// Customize NotFoundHandler to log 404s
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Warningf("no route found for %s %s", r.Method, r.URL.Path)
		api.WriteJSONError(w, http.StatusNotFound, "route not found")
	})

	s.handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger}),
	)(handlers.CompressHandler(s.requestLoggerMiddleware(s.router)))

	return s
}

func newMetricsRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
			Namespace: metrics.Namespace,
		}),
		collectors.NewGoCollector(),
		prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metrics.Namespace,
			Name:        "info",
			Help:        "idb information.",
			ConstLabels: prometheus.Labels{"version": idb.Version},
		}),
	)
	return r
}

// MustRegisterMetrics adds collectors to the registry served on /metrics.
func (s *Server) MustRegisterMetrics(cs ...prometheus.Collector) {
	s.registry.MustRegister(cs...)
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLoggerMiddleware logs the method, URL path, status and duration for each request.
func (s *Server) requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("api access")
	})
}

type recoveryLogger struct {
	logger logging.Logger
}

func (l recoveryLogger) Println(args ...interface{}) {
	l.logger.Error(args...)
}

// Router exposes the internal mux.Router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Infof("api listening on %s", ln.Addr())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
