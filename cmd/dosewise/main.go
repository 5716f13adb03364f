package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/LohithR22/DoseWise/internal/agent"
	"github.com/LohithR22/DoseWise/internal/api"
	"github.com/LohithR22/DoseWise/internal/intelligence"
	"github.com/LohithR22/DoseWise/internal/notification"
	"github.com/LohithR22/DoseWise/internal/reorder"
	"github.com/LohithR22/DoseWise/internal/shared/auth"
	"github.com/LohithR22/DoseWise/internal/shared/config"
	"github.com/LohithR22/DoseWise/internal/shared/database"
	"github.com/LohithR22/DoseWise/internal/shared/events"
	"github.com/LohithR22/DoseWise/internal/shared/metrics"
	secmiddleware "github.com/LohithR22/DoseWise/internal/shared/middleware"
	"github.com/LohithR22/DoseWise/internal/store"
)

// App holds all application dependencies
type App struct {
	Config *config.Config
	DB     *database.DB
	Bus    *events.Bus
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	app := &App{Config: cfg}

	// Initialize database (optional - skip if not available)
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		fmt.Printf("Warning: Database not available: %v\n", err)
		fmt.Println("Running with file-backed snapshots...")
	} else {
		app.DB = db
		defer db.Close()

		if err := database.Migrate(ctx, db.Pool); err != nil {
			fmt.Printf("Warning: Migration failed: %v\n", err)
		}
	}

	// Initialize event bus (optional - skip if disabled or not available)
	bus, err := events.NewBus(ctx, cfg.EventStore)
	switch {
	case err != nil:
		fmt.Printf("Warning: Event store not available: %v\n", err)
		fmt.Println("Running without audit event streaming...")
	case bus == nil:
		fmt.Println("Audit event streaming disabled")
	default:
		app.Bus = bus
		defer bus.Close()
		fmt.Println("Audit event bus initialized")
	}

	// Snapshot store: PostgreSQL when available, JSON files otherwise
	var snapshots store.Store
	if app.DB != nil {
		snapshots = store.NewPostgresStore(app.DB.Pool)
	} else {
		fileStore, err := store.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create snapshot store: %v\n", err)
			os.Exit(1)
		}
		snapshots = fileStore
	}

	// Notification service
	emailProvider := notification.NewSMTPProvider(cfg.SMTP)
	var provider notification.Provider = emailProvider
	if !emailProvider.Enabled() {
		fmt.Println("Warning: SMTP credentials not configured, notifications go to console")
		provider = notification.NewConsoleProvider()
	}
	notifier := notification.NewService(provider, cfg.SMTP.CaregiverEmail, notification.DefaultServiceConfig())
	if err := notifier.Start(ctx); err != nil {
		fmt.Printf("Warning: notification service failed to start: %v\n", err)
	}
	defer notifier.Stop()

	// Reorder agent: legacy pharmacy directory when configured
	var directory reorder.Directory
	if cfg.Pharmacy.Enabled {
		sqlDir, err := reorder.NewSQLDirectory(ctx, cfg.Pharmacy)
		if err != nil {
			fmt.Printf("Warning: Pharmacy system not available: %v\n", err)
		} else {
			directory = sqlDir
			defer sqlDir.Close()
			fmt.Println("Pharmacy directory connected")
		}
	}
	var reorders *reorder.Agent
	if app.DB != nil {
		reorders = reorder.NewAgent(directory, app.DB.Pool)
	} else {
		reorders = reorder.NewAgent(directory, nil)
	}

	// Caregiver summarizer
	summarizer := intelligence.NewSummarizer(intelligence.SummarizerConfig{
		BaseURL: cfg.Summarizer.URL,
		Enabled: cfg.Summarizer.Enabled,
		Timeout: 15 * time.Second,
	})
	if cfg.Summarizer.Enabled {
		fmt.Printf("Summarizer enabled (service: %s)\n", cfg.Summarizer.URL)
	}

	// Cycle runner with configured thresholds
	runner := agent.NewRunner(cfg.Agent.LowStockThreshold, intelligence.NewAnalyzer(intelligence.TrendConfig{
		BPWindowDays:         cfg.Agent.BPWindowDays,
		BPConsecutiveDays:    cfg.Agent.BPConsecutiveDays,
		BPSystolicHigh:       140,
		BPDiastolicHigh:      90,
		SugarSpikeThreshold:  cfg.Agent.SugarSpikeThreshold,
		WellbeingRepeatCount: cfg.Agent.WellbeingRepeatCount,
		LowInventoryCount:    2,
	}), nil)

	handler := api.NewHandler(snapshots, runner, notifier, reorders, summarizer, app.Bus)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(secmiddleware.RateLimiter(50, 100))
	r.Use(metrics.Middleware)
	r.Use(corsMiddleware)

	// Health checks (unauthenticated)
	r.Get("/health", healthHandler(app))
	r.Get("/ready", readyHandler(app))
	r.Handle("/metrics", metrics.Handler())

	r.Get("/", infoHandler)

	r.Route("/api", func(r chi.Router) {
		if cfg.Server.Env == "production" {
			r.Use(auth.Middleware(cfg.Auth))
		}
		r.Mount("/", handler.Routes())
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		fmt.Println("\nShutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Server shutdown error: %v\n", err)
		}
		close(done)
	}()

	fmt.Println("============================================")
	fmt.Println("DoseWise Medication Adherence Assistant")
	fmt.Println("============================================")
	fmt.Printf("Environment:  %s\n", cfg.Server.Env)
	fmt.Printf("Server:       http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("API:          http://localhost:%d/api\n", cfg.Server.Port)
	fmt.Printf("Health:       http://localhost:%d/health\n", cfg.Server.Port)
	fmt.Printf("Database:     %v\n", app.DB != nil)
	fmt.Printf("Event store:  %v\n", app.Bus != nil)
	fmt.Printf("Pharmacy:     %v\n", cfg.Pharmacy.Enabled)
	fmt.Println("============================================")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}

	<-done
	fmt.Println("Server stopped")
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"name":    "DoseWise Medication Adherence Assistant",
		"version": "0.1.0",
		"docs":    "/api",
	})
}

func healthHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
		})
	}
}

func readyHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"server": "ready",
		}

		if app.DB != nil {
			if err := app.DB.Health(r.Context()); err != nil {
				checks["database"] = "not ready: " + err.Error()
			} else {
				checks["database"] = "ready"
			}
		} else {
			checks["database"] = "not configured"
		}

		if app.Bus != nil {
			if err := app.Bus.Health(); err != nil {
				checks["eventstore"] = "not ready: " + err.Error()
			} else {
				checks["eventstore"] = "ready"
			}
		} else {
			checks["eventstore"] = "not configured"
		}

		allReady := true
		for _, status := range checks {
			if status != "ready" && status != "not configured" {
				allReady = false
				break
			}
		}

		status := http.StatusOK
		if !allReady {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[bool]string{true: "ready", false: "not ready"}[allReady],
			"checks": checks,
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
