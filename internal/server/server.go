package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Swevix/WebRGZ/config"
	"github.com/Swevix/WebRGZ/internal/db"
	"github.com/Swevix/WebRGZ/internal/handlers"
	"github.com/Swevix/WebRGZ/internal/notify"
	"github.com/Swevix/WebRGZ/internal/services"
	"github.com/Swevix/WebRGZ/internal/storage"
	"github.com/Swevix/WebRGZ/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer  *http.Server
	router      *chi.Mux
	db          *sql.DB
	closeNotify func() error
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Image storage is optional; without it listings simply cannot
	// carry images.
	var imageStore *storage.Storage
	if cfg.Storage.Driver != "none" {
		imageStore, err = storage.New(ctx, cfg)
		if err != nil {
			_ = dbConn.Close()
			return nil, err
		}
	}

	notifier, closeNotify, err := notify.NewNotifier(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	listingRepo := store.NewListingRepository(dbConn)
	likeRepo := store.NewLikeRepository(dbConn)
	commentRepo := store.NewCommentRepository(dbConn)
	referenceRepo := store.NewReferenceRepository(dbConn)
	resetTokenRepo := store.NewResetTokenRepository(dbConn)

	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userRepo)
	resetService := services.NewPasswordResetService(userRepo, resetTokenRepo, notifier, cfg.ResetTokenTTL)
	referenceService := services.NewReferenceService(referenceRepo)
	listingService := services.NewListingService(listingRepo, referenceRepo, imageStore)
	likeService := services.NewLikeService(likeRepo, listingRepo)
	commentService := services.NewCommentService(commentRepo)

	authMiddleware := handlers.RequireAuth(jwtSecret)
	optionalAuthMiddleware := handlers.OptionalAuth(jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, authService, resetService, jwtSecret)
	})
	router.Route("/listings", func(r chi.Router) {
		handlers.ListingRouter(r, listingService, likeService, commentService, authMiddleware, optionalAuthMiddleware)
	})
	handlers.ReferenceRouter(router, referenceService)
	router.Route("/admin", func(r chi.Router) {
		handlers.AdminRouter(r, userService, listingService, referenceService, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer:  httpServer,
		router:      router,
		db:          dbConn,
		closeNotify: closeNotify,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.closeNotify != nil {
		_ = s.closeNotify()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
