// Package httpapi exposes the key, signing and instruction services over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/R3E-Network/solana_layer/internal/audit"
	"github.com/R3E-Network/solana_layer/internal/httputil"
	"github.com/R3E-Network/solana_layer/internal/keypair"
	"github.com/R3E-Network/solana_layer/internal/logging"
	"github.com/R3E-Network/solana_layer/internal/metrics"
	"github.com/R3E-Network/solana_layer/internal/middleware"
)

// Options wires the server's collaborators. Logger and Metrics are required;
// a nil Auth or RateLimiter disables that layer.
type Options struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string

	Logger      *logging.Logger
	Metrics     *metrics.Metrics
	Audit       *audit.Logger
	Keys        *keypair.Generator
	Auth        *middleware.AuthMiddleware
	RateLimiter *middleware.RateLimiter
}

// Server routes gateway requests.
type Server struct {
	serviceName string
	version     string

	logger  *logging.Logger
	metrics *metrics.Metrics
	audit   *audit.Logger
	keys    *keypair.Generator

	router *mux.Router
}

// Endpoint describes one route, used for the startup banner.
type Endpoint struct {
	Method string
	Path   string
}

// Endpoints lists the public routes in registration order.
var Endpoints = []Endpoint{
	{http.MethodPost, "/keypair"},
	{http.MethodPost, "/token/create"},
	{http.MethodPost, "/token/mint"},
	{http.MethodPost, "/message/sign"},
	{http.MethodPost, "/message/verify"},
	{http.MethodPost, "/send/sol"},
	{http.MethodPost, "/send/token"},
	{http.MethodGet, "/health"},
	{http.MethodGet, "/metrics"},
}

func New(opts Options) *Server {
	keys := opts.Keys
	if keys == nil {
		keys = keypair.NewGenerator(nil)
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		serviceName: opts.ServiceName,
		version:     opts.Version,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		audit:       opts.Audit,
		keys:        keys,
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.Use(middleware.RecoveryMiddleware(s.logger))
	router.Use(middleware.LoggingMiddleware(s.logger))
	router.Use(middleware.NewCORSMiddleware(origins).Handler)
	router.Use(middleware.MetricsMiddleware(s.metrics))
	if opts.Auth != nil {
		router.Use(opts.Auth.Handler)
	}
	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Handler)
	}

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	router.HandleFunc("/keypair", s.handleKeypair).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/token/create", s.handleCreateToken).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/token/mint", s.handleMintToken).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/message/sign", s.handleSignMessage).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/message/verify", s.handleVerifyMessage).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/send/sol", s.handleSendSol).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/send/token", s.handleSendToken).Methods(http.MethodPost, http.MethodOptions)

	s.router = router
	return s
}

// Router returns the configured mux.
func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, healthResponse{
		Status:    "healthy",
		Service:   s.serviceName,
		Version:   s.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
