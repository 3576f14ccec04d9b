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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cinedex/apiserver/config"
	"github.com/cinedex/apiserver/internal/activity"
	"github.com/cinedex/apiserver/internal/db"
	"github.com/cinedex/apiserver/internal/handlers"
	"github.com/cinedex/apiserver/internal/logging"
	"github.com/cinedex/apiserver/internal/mq"
	"github.com/cinedex/apiserver/internal/password"
	"github.com/cinedex/apiserver/internal/services"
	"github.com/cinedex/apiserver/internal/store"
	"github.com/cinedex/apiserver/internal/tmdb"
)

const requestTimeout = 60 * time.Second

// Server wraps the HTTP server and the connections it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	bus        *mq.MQ
}

// Dependencies are the services the router exposes.
type Dependencies struct {
	Users     *services.UserService
	Favorites *services.FavoriteService
	Reviews   *services.ReviewService
	Media     *services.MediaService
	Auth      *handlers.Authenticator
	HTTP      config.HTTPConfig
}

// New connects the database, the media API client and, when configured,
// the activity bus, and builds the router.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	gateway, err := tmdb.NewClient(tmdb.Config{
		BaseURL:   cfg.TMDB.BaseURL,
		APIKey:    cfg.TMDB.APIKey,
		Language:  cfg.TMDB.Language,
		Timeout:   cfg.TMDB.Timeout,
		RateLimit: cfg.TMDB.RateLimit,
		RateBurst: cfg.TMDB.RateBurst,
	})
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	bus, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	var events services.ActivityPublisher
	if bus != nil {
		events = activity.NewPublisher(bus)
		logging.Info().Str("backend", cfg.MQ.Backend).Str("channel", bus.Channel()).Msg("activity events enabled")
	}

	userRepo := store.NewUserRepository(dbConn)
	userService := services.NewUserService(userRepo, password.NewHasher(password.DefaultParams), events)
	favoriteService := services.NewFavoriteService(store.NewFavoriteRepository(dbConn), events)
	reviewService := services.NewReviewService(store.NewReviewRepository(dbConn), userRepo, events)
	mediaService := services.NewMediaService(gateway, favoriteService, reviewService)

	router := NewRouter(Dependencies{
		Users:     userService,
		Favorites: favoriteService,
		Reviews:   reviewService,
		Media:     mediaService,
		Auth:      handlers.NewAuthenticator(jwtSecret, cfg.Auth.TokenTTL),
		HTTP:      cfg.HTTP,
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		bus:        bus,
	}, nil
}

// NewRouter mounts every route on a fresh chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger,
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
		corsMiddleware(deps.HTTP),
	)

	router.Get("/healthz", handlers.Healthz)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			handlers.UserRouter(r, deps.Users, deps.Favorites, deps.Auth, credentialLimiter(deps.HTTP))
		})
		r.Route("/reviews", func(r chi.Router) {
			handlers.ReviewRouter(r, deps.Reviews, deps.Auth)
		})
		r.Route("/{mediaType}", func(r chi.Router) {
			handlers.MediaRouter(r, deps.Media, deps.Auth)
		})
	})
	router.Route("/person", func(r chi.Router) {
		handlers.PersonRouter(r, deps.Media)
	})

	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the bus and the database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.bus != nil {
		err = errors.Join(err, s.bus.Close())
	}
	if s.db != nil {
		err = errors.Join(err, s.db.Close())
	}
	return err
}
