package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davidfaure/closecall/internal/config"
	"github.com/davidfaure/closecall/internal/controllers"
	"github.com/davidfaure/closecall/internal/functions"
	"github.com/davidfaure/closecall/internal/middleware"
	"github.com/davidfaure/closecall/internal/models"
	"github.com/davidfaure/closecall/internal/notify"
	"github.com/davidfaure/closecall/internal/services"
	"github.com/davidfaure/closecall/migrations"
)

func main() {
	cfg := config.MustLoad()

	log := newLogger(cfg)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}))
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	// Setup the Database ---------------
	log.Info("connecting to database")
	dbCfg := models.DefaultDatabaseConfig(cfg.Database.URL)
	dbCfg.MaxConns = cfg.Database.MaxConns
	dbCfg.MinConns = cfg.Database.MinConns

	db, err := models.NewDatabase(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("database connected")

	// run migrations
	if err := db.Migrate(migrations.FS, "."); err != nil {
		return err
	}

	// Setup Services ---------------
	clientService := models.NewClientService(db.Pool)
	callService := models.NewCallService(db.Pool)
	emailService := models.NewEmailService(db.Pool)

	fnClient := functions.NewClient(cfg.Functions.BaseURL, cfg.Functions.ServiceKey)
	notifier := notify.NewLogNotifier(log)

	analyzer := services.NewCallAnalyzer(fnClient, notifier, log)
	dispatcher := services.NewEmailDispatcher(fnClient, emailService, log)

	// Setup Controllers ---------------
	analyzeCtrl := controllers.NewAnalyzeController(analyzer, callService, emailService, log)
	emailCtrl := controllers.NewEmailController(dispatcher, emailService, log)
	clientCtrl := controllers.NewClientController(clientService, log)
	dashboardCtrl := controllers.NewDashboardController(callService, emailService, log)
	healthCtrl := controllers.NewHealthController(db)

	// Setup router and routes
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(log))

	r.Get("/healthz", healthCtrl.GetHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", dashboardCtrl.GetDashboard)

		r.Post("/calls/analyze", analyzeCtrl.PostAnalyze)
		r.Get("/calls", analyzeCtrl.ListCalls)
		r.Get("/calls/{id}", analyzeCtrl.GetCall)

		r.Post("/emails/{id}/send", emailCtrl.PostSend)
		r.Patch("/emails/{id}/status", emailCtrl.PatchStatus)
		r.Get("/emails", emailCtrl.ListEmails)
		r.Get("/emails/{id}", emailCtrl.GetEmail)

		r.Get("/clients", clientCtrl.ListClients)
		r.Post("/clients", clientCtrl.PostClient)
		r.Get("/clients/{id}", clientCtrl.GetClient)
		r.Patch("/clients/{id}", clientCtrl.PatchClient)
		r.Delete("/clients/{id}", clientCtrl.DeleteClient)
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the Server
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Server.Addr, "env", cfg.Server.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for a signal or a server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("received signal, shutting down", "signal", sig.String())
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
