// Main entry point of the inkwell application. It initializes configuration,
// the database connection, services and handlers, sets up the HTTP router
// and middleware, and starts the server with graceful shutdown.
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
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/auth"
	"github.com/user/inkwell-go/config"
	"github.com/user/inkwell-go/db"
	"github.com/user/inkwell-go/posts"
	"github.com/user/inkwell-go/users"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// .env support for development; in production variables are set directly.
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg(".env file not found or not readable")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	mongoClient, database, err := db.Connect(cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to disconnect mongo client")
		}
	}()

	if err := db.EnsureIndexes(database); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	// Manual dependency injection: stores, then services, then handlers.
	userStore := users.NewMongoStore(database)
	postStore := posts.NewMongoStore(database)

	tokenService := auth.NewTokenService(*cfg.Auth)
	authService := auth.NewService(userStore, tokenService)
	authHandlers := auth.NewHandlers(authService)

	userService := users.NewService(userStore)
	userHandlers := users.NewHandlers(userService, cfg.Server.UploadDir)

	postService := posts.NewService(postStore, userStore)
	postHandlers := posts.NewHandlers(postService)

	requireAuth := auth.Middleware(tokenService, userStore)

	r := chi.NewRouter()

	// Global middleware; chi requires these before any routes.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panic recovery that keeps the {message} error shape.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Error().Interface("panic", rvr).Msg("recovered from panic")
					writeError(ww, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(ww, r)
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", userHandlers.HandleGetProfile())
			r.Put("/profile", userHandlers.HandleUpdateProfile())
			// The SPA historically used both verbs for avatar uploads.
			r.Put("/avatar", userHandlers.HandleUpdateAvatar())
			r.Post("/avatar", userHandlers.HandleUpdateAvatar())
		})
	})

	r.Route("/api/posts", func(r chi.Router) {
		postHandlers.RegisterRoutes(r, requireAuth)
	})

	// Uploaded avatars are served straight from disk.
	uploadsFS := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Server.UploadDir)))
	r.Get("/uploads/*", uploadsFS.ServeHTTP)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped gracefully")
}

// requestLogger logs one line per request with method, path, status and
// duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// writeError is a local helper for the panic recovery middleware, kept
// separate to avoid an import cycle with the handler packages.
func writeError(w http.ResponseWriter, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse()); err != nil {
		http.Error(w, `{"message":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}
