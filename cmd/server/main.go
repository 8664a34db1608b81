package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lmittmann/tint"

	"spellstreak/internal/clock"
	"spellstreak/internal/config"
	"spellstreak/internal/database"
	"spellstreak/internal/handlers"
	"spellstreak/internal/jobs"
	"spellstreak/internal/match"
	"spellstreak/internal/repository"
	"spellstreak/internal/security"
	"spellstreak/internal/service"
)

func main() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		}),
	))

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("database connection established", "type", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	clk := clock.System{}
	hub := match.NewHub()

	playerRepo := repository.NewPlayerRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	roomRepo := repository.NewRoomRepository(db, hub)
	wordRepo := repository.NewWordRepository(db)

	// Fall back to the built-in word bank when the words table is empty,
	// so a fresh database without the seed migration still plays.
	var wordSource match.WordSource = wordRepo
	if n, err := wordRepo.Count(); err != nil || n == 0 {
		slog.Warn("words table unavailable, using built-in bank", "count", n, "error", err)
		wordSource = match.BankSource{}
	}

	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(playerRepo, tokens)
	reviewService := service.NewReviewService(clk, historyRepo)
	matchService := service.NewMatchService(roomRepo, wordSource, clk)

	emailService, err := service.NewEmailService(context.Background(), cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName)
	if err != nil {
		slog.Warn("email service unavailable, invites disabled", "error", err)
		emailService, _ = service.NewEmailService(context.Background(), "", "", "")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	limiter := security.NewRateLimiter(10, time.Minute)

	mw := handlers.NewMiddleware(authService, limiter)
	authHandler := handlers.NewAuthHandler(authService, validate)
	reviewHandler := handlers.NewReviewHandler(reviewService, validate)
	matchHandler := handlers.NewMatchHandler(matchService, emailService, validate)

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/auth/register", mw.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", mw.RateLimit(authHandler.Login))

	// Review routes
	mux.HandleFunc("POST /api/review/attempts", mw.RequireAuth(reviewHandler.RecordAttempt))
	mux.HandleFunc("GET /api/review/queue", mw.RequireAuth(reviewHandler.ReviewQueue))
	mux.HandleFunc("GET /api/review/weak-categories", mw.RequireAuth(reviewHandler.WeakCategories))
	mux.HandleFunc("GET /api/review/mastered", mw.RequireAuth(reviewHandler.MasteredCount))
	mux.HandleFunc("GET /api/review/recent", mw.RequireAuth(reviewHandler.RecentAttempts))

	// Match routes
	mux.HandleFunc("POST /api/rooms", mw.RequireAuth(matchHandler.CreateRoom))
	mux.HandleFunc("POST /api/rooms/join", mw.RequireAuth(matchHandler.JoinRoom))
	mux.HandleFunc("GET /api/rooms/{code}", mw.RequireAuth(matchHandler.GetRoom))
	mux.HandleFunc("POST /api/rooms/{code}/start", mw.RequireAuth(matchHandler.StartMatch))
	mux.HandleFunc("POST /api/rooms/{code}/answer", mw.RequireAuth(matchHandler.SubmitAnswer))
	mux.HandleFunc("POST /api/rooms/{code}/invite", mw.RequireAuth(matchHandler.Invite))

	handler := handlers.Logging(mux)

	sweeper := jobs.NewRoomSweeper(roomRepo, reviewService, clk, cfg.FinishedRoomTTL, cfg.RoomMaxAge, cfg.SweepInterval)
	if err := sweeper.Start(); err != nil {
		slog.Error("failed to start room sweeper", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
