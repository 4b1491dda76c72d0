package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	auth2 "gitlab.com/codeprep.net/internal/core/services/auth"
	"gitlab.com/codeprep.net/internal/core/services/record"
	"gitlab.com/codeprep.net/internal/core/services/submission"
	"gitlab.com/codeprep.net/internal/core/services/testcase"
	"gitlab.com/codeprep.net/internal/core/services/testrun"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/handlers"
	"gitlab.com/codeprep.net/internal/handlers/auth"
	"gitlab.com/codeprep.net/internal/handlers/records"
	"gitlab.com/codeprep.net/internal/handlers/submissions"
	"gitlab.com/codeprep.net/internal/handlers/testcases"
	"gitlab.com/codeprep.net/internal/handlers/testruns"
)

type ServiceProvider struct {
	testRunService    testrun.ITestRunService
	testCaseService   testcase.ITestCaseService
	recordService     record.IRecordService
	submissionService submission.ISubmissionService
	localAuth         auth2.IAuthService

	// languages backs GET /api/languages; resolve reports which ones are runnable
	languages []domain.LanguageConfig
	resolve   func(string) (string, bool)
}

func NewServiceProvider(
	testRunService testrun.ITestRunService,
	testCaseService testcase.ITestCaseService,
	recordService record.IRecordService,
	submissionService submission.ISubmissionService,
	localAuth auth2.IAuthService,
	languages []domain.LanguageConfig,
	resolve func(string) (string, bool),
) *ServiceProvider {
	return &ServiceProvider{
		testRunService:    testRunService,
		testCaseService:   testCaseService,
		recordService:     recordService,
		submissionService: submissionService,
		localAuth:         localAuth,
		languages:         languages,
		resolve:           resolve,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            int
	ServiceName     string
	ServiceProvider ServiceProvider
	middleware      *handlers.MiddlewareProvider
	gatherer        prometheus.Gatherer
	logger          primary.Logger
}

func NewServer(
	port int,
	serviceName string,
	serviceProvider ServiceProvider,
	middleware *handlers.MiddlewareProvider,
	gatherer prometheus.Gatherer,
	logger primary.Logger,
) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		middleware:      middleware,
		gatherer:        gatherer,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	if s.middleware == nil {
		return errors.New("http server: middleware provider is required")
	}
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	auth.NewHandler(s.logger).RegisterRoutes(r, &auth.ServiceDependencies{
		LocalAuthService: s.ServiceProvider.localAuth,
	})
	testruns.
		NewHandler(s.ServiceProvider.testRunService, s.ServiceProvider.languages, s.ServiceProvider.resolve, s.logger).
		RegisterRoutes(r, s.middleware)
	testcases.NewHandler(s.ServiceProvider.testCaseService, s.logger).RegisterRoutes(r, s.middleware)
	submissions.NewHandler(s.ServiceProvider.submissionService, s.logger).RegisterRoutes(r, s.middleware)
	records.NewHandler(s.ServiceProvider.recordService, s.logger).RegisterRoutes(r, s.middleware)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlers.ResponseError(w, "route not found", http.StatusNotFound)
	})
	s.router = r
	return nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	handlers.ResponseData(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": s.ServiceName,
	})
}

// Start serves in the background. Listen errors other than a clean
// shutdown are sent on the returned channel.
func (s *Server) Start(_ context.Context) <-chan error {
	// Set up server
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	// Start the server in a goroutine
	go func() {
		s.logger.Info("Server listening", "addr", s.srv.Addr, "service", s.ServiceName)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down http server...")
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
