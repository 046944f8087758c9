package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/urfave/negroni"

	"github.com/roach88/expertlog/internal/record"
	"github.com/roach88/expertlog/internal/replica"
)

// Writer applies writes to every configured store. *replica.Coordinator
// implements it.
type Writer interface {
	SaveLog(ctx context.Context, l record.ExpertLog) (replica.Result, error)
	SaveCamp(ctx context.Context, c record.ExpertCamp) (replica.Result, error)
	DeleteLog(ctx context.Context, id record.ID) (replica.Result, error)
}

// Reader serves the read endpoints. *store.Store implements it.
type Reader interface {
	ReadLogs(ctx context.Context) ([]record.ExpertLog, error)
	ReadCamps(ctx context.Context) ([]record.ExpertCamp, error)
	ReadCampsForLog(ctx context.Context, logID record.ID) ([]record.ExpertCamp, error)
}

// Config holds the server's collaborators.
type Config struct {
	Writer Writer
	Reader Reader

	// Decode tells how identifier fields in bodies and paths are typed.
	Decode record.DecodeOptions

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Registry receives the HTTP metrics and backs GET /metrics. A private
	// registry is created when nil.
	Registry *prometheus.Registry
}

// Server routes HTTP requests to the stores.
type Server struct {
	router   *mux.Router
	writer   Writer
	reader   Reader
	decode   record.DecodeOptions
	logger   *slog.Logger
	registry *prometheus.Registry
	duration *prometheus.HistogramVec
	doc      *openapi3.T
}

// New creates a server and registers its routes.
func New(cfg Config) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		writer:   cfg.Writer,
		reader:   cfg.Reader,
		decode:   cfg.Decode,
		logger:   cfg.Logger,
		registry: cfg.Registry,
		doc:      Document(cfg.Decode),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "expertlog",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route, method and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
	s.registry.MustRegister(s.duration)

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.handleRoot()).Methods("GET")
	s.router.HandleFunc("/save", s.handleSaveLog()).Methods("POST")
	s.router.HandleFunc("/save-camp", s.handleSaveCamp()).Methods("POST")
	s.router.HandleFunc("/data", s.handleGetLogs()).Methods("GET")
	s.router.HandleFunc("/camps", s.handleGetCamps()).Methods("GET")
	s.router.HandleFunc("/logs/{id}/camps", s.handleGetLogCamps()).Methods("GET")
	s.router.HandleFunc("/logs/{id}", s.handleDeleteLog()).Methods("DELETE")
	s.router.HandleFunc("/view-db", s.handleViewLogs()).Methods("GET")
	s.router.HandleFunc("/view-camps", s.handleViewCamps()).Methods("GET")
	s.router.HandleFunc("/openapi.json", s.handleOpenAPI()).Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods("GET")
	s.router.NotFoundHandler = http.HandlerFunc(handleNotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)
	s.router.Use(s.instrument)
}

// Handler returns the router wrapped in the middleware chain: panic
// recovery, request logging, then CORS.
func (s *Server) Handler() http.Handler {
	recovery := negroni.NewRecovery()
	recovery.PrintStack = false
	recovery.Logger = slog.NewLogLogger(s.logger.Handler(), slog.LevelError)

	n := negroni.New(recovery, negroni.HandlerFunc(s.logRequest), cors.AllowAll())
	n.UseHandler(s.router)
	return n
}
