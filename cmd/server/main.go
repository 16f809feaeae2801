package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/issuetracker/backend/internal/config"
	"github.com/issuetracker/backend/internal/handler"
	"github.com/issuetracker/backend/internal/logging"
	"github.com/issuetracker/backend/internal/metrics"
	"github.com/issuetracker/backend/internal/repository"
	"github.com/issuetracker/backend/internal/service"
	"github.com/issuetracker/backend/internal/storage"
	"github.com/issuetracker/backend/pkg/identity"
)

func main() {
	configFile := flag.String("config", "", "optional config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logging.Fatal("load config failed", "error", err)
	}
	logging.Setup(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logging.Fatal("invalid config", "error", err)
	}

	pool, err := repository.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	pagination := service.Pagination{DefaultLimit: cfg.DefaultPageLimit, MaxLimit: cfg.MaxPageLimit}

	store := repository.NewPgStore(pool)
	issueRepo := repository.NewPgIssueRepository(pool)
	labelRepo := repository.NewPgLabelRepository(pool)
	userRepo := repository.NewPgUserRepository(pool)
	commentRepo := repository.NewPgCommentRepository(pool)
	reportRepo := repository.NewPgReportRepository(pool)

	issueService := service.NewIssueService(store, issueRepo, commentRepo, service.IssueServiceOptions{
		Observer:   m,
		Pagination: pagination,
	})
	labelService := service.NewLabelService(labelRepo)
	userService := service.NewUserService(userRepo, pagination)
	commentService := service.NewCommentService(commentRepo, pagination)
	reportService := service.NewReportService(reportRepo)

	var archive storage.Storage
	if cfg.ImportArchiveDir != "" {
		archive = storage.NewLocalStorage(cfg.ImportArchiveDir)
	}

	h := handler.New(issueRepo, cfg.FrontendURL)
	issueHandler := handler.NewIssueHandler(issueService, archive, m)
	labelHandler := handler.NewLabelHandler(labelService)
	userHandler := handler.NewUserHandler(userService)
	commentHandler := handler.NewCommentHandler(commentService)
	reportHandler := handler.NewReportHandler(reportService)

	rootCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	batchLimiter := handler.NewBatchLimiter(rootCtx, cfg.BatchRateLimit, cfg.TrustedProxyCount)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.Handle("GET /metrics", m.Handler())

	// Issues
	mux.HandleFunc("POST /api/issues", issueHandler.Create)
	mux.HandleFunc("GET /api/issues", issueHandler.List)
	mux.HandleFunc("GET /api/issues/{id}", issueHandler.Get)
	mux.HandleFunc("PATCH /api/issues/{id}", issueHandler.Update)
	mux.HandleFunc("PUT /api/issues/{id}/labels", issueHandler.SetLabels)
	mux.Handle("POST /api/issues/{id}/comments", identity.FromHeader(http.HandlerFunc(issueHandler.AddComment)))
	mux.HandleFunc("GET /api/issues/{id}/comments", issueHandler.ListComments)
	mux.HandleFunc("GET /api/issues/{id}/timeline", issueHandler.Timeline)
	mux.Handle("POST /api/issues/bulk-status", batchLimiter.Limit(issueHandler.BulkStatus))
	mux.Handle("POST /api/issues/import", batchLimiter.Limit(issueHandler.Import))

	// Labels, users, comments
	mux.HandleFunc("GET /api/labels", labelHandler.List)
	mux.HandleFunc("POST /api/labels", labelHandler.Create)
	mux.HandleFunc("GET /api/users", userHandler.List)
	mux.HandleFunc("POST /api/users", userHandler.Create)
	mux.HandleFunc("GET /api/users/{id}", userHandler.Get)
	mux.HandleFunc("GET /api/comments", commentHandler.List)

	// Reports
	mux.HandleFunc("GET /api/reports/top-assignees", reportHandler.TopAssignees)
	mux.HandleFunc("GET /api/reports/latency", reportHandler.Latency)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      h.CORS(handler.SecurityHeaders(handler.RequestLogger(m)(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
