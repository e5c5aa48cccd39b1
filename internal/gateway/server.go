package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmaiga/solidavenir/pkg/config"
	"github.com/dmaiga/solidavenir/pkg/interfaces"
	"github.com/dmaiga/solidavenir/pkg/logger"
	"github.com/dmaiga/solidavenir/pkg/monitoring"
)

// Server exposes the gateway service over HTTP and owns the lifecycle of its collaborators
type Server struct {
	router  *mux.Router
	server  *http.Server
	service *Service
	ledger  interfaces.LedgerClient
	metrics *monitoring.MetricsCollector
	tracing *monitoring.TracingManager
	logger  *logger.Logger
	cfg     *config.Config
}

// NewServer wires routes and middleware around service.
// The ledger client is closed by Stop.
func NewServer(cfg *config.Config, service *Service, ledgerClient interfaces.LedgerClient,
	metrics *monitoring.MetricsCollector, tracing *monitoring.TracingManager, log *logger.Logger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		service: service,
		ledger:  ledgerClient,
		metrics: metrics,
		tracing: tracing,
		logger:  log,
		cfg:     cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  config.Timeout(cfg.Server.ReadTimeout),
		WriteTimeout: config.Timeout(cfg.Server.WriteTimeout),
		IdleTimeout:  config.Timeout(cfg.Server.IdleTimeout),
	}

	return s
}

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes sets up the routing
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/create-wallet", s.handleCreateWallet).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/transfer", s.handleTransfer).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/balance/{accountId}", s.handleBalance).Methods(http.MethodGet)
	s.router.HandleFunc("/accounts/{accountId}/exists", s.handleAccountExists).Methods(http.MethodGet)
	s.router.HandleFunc("/create-topic", s.handleCreateTopic).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/send-message", s.handleSendMessage).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	if s.cfg.Monitoring.Enabled && s.metrics != nil {
		s.router.Handle(s.cfg.Monitoring.MetricsPath, s.metrics.Handler()).Methods(http.MethodGet)
	}
}

// setupMiddleware sets up middleware, outermost first
func (s *Server) setupMiddleware() {
	mm := monitoring.NewMonitoringMiddleware(s.metrics, s.tracing, s.logger)
	s.router.Use(mm.HTTPMiddleware(logger.ContextWithRequestID))
	s.router.Use(securityHeadersMiddleware)
	s.router.Use(corsMiddleware)
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"addr":     s.server.Addr,
		"network":  s.ledger.Network(),
		"operator": s.ledger.OperatorAccountID(),
	}).Info("Starting ledger gateway")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests, then releases the ledger client and flushes traces
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping ledger gateway")

	var errs []error
	if err := s.server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.ledger.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
