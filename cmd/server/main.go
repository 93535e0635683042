package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/learnhub/backend/config"
	"github.com/learnhub/backend/internal/auth"
	"github.com/learnhub/backend/internal/backend"
	"github.com/learnhub/backend/internal/handlers"
	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/middleware"
	"github.com/learnhub/backend/internal/obfuscate"
	"github.com/learnhub/backend/internal/repository"
	"github.com/learnhub/backend/internal/watcher"
	"github.com/learnhub/backend/internal/websocket"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", "error", err)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	// Open the slot store
	store, err := backend.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	// Initialize repositories
	codec := obfuscate.NewCodec(cfg.Crypto.Key)
	courseRepo := repository.NewCourseRepository(store.Store, codec, log)
	userRepo := repository.NewUserRepository(store.Store, log)
	sessionRepo := repository.NewSessionRepository(store.Store)
	profileRepo := repository.NewProfileRepository(store.Store)
	prefRepo := repository.NewPreferenceRepository(store.Store)

	// Initialize services
	admin := auth.Admin{Username: cfg.Admin.Username, Password: cfg.Admin.Password}
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	authService := auth.NewService(userRepo, sessionRepo, jwtService, admin, log)
	if err := authService.EnsureAdmin(ctx); err != nil {
		return err
	}

	// Rate limiters; Redis decides when it is the backend
	loginLimiter := middleware.NewRateLimiter("login", cfg.API.RateLimitLoginsPerSec, store.Limiter, log)
	loginLimiter.Cleanup(ctx)
	writeLimiter := middleware.NewRateLimiter("course_write", 5, store.Limiter, log)
	writeLimiter.Cleanup(ctx)

	hub := websocket.NewHub(log)
	wsHandler := websocket.NewHandler(hub, prefRepo, cfg.CORS.AllowedOrigins, log)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	handlers.RegisterRoutes(router, handlers.Routes{
		Auth:         handlers.NewAuthHandler(authService, userRepo, loginLimiter, log),
		Courses:      handlers.NewCourseHandler(courseRepo, userRepo, prefRepo, log),
		Profile:      handlers.NewProfileHandler(profileRepo, prefRepo, log),
		Authn:        authService,
		Gate:         auth.NewGate(admin),
		WriteLimiter: writeLimiter,
		WebSocket:    wsHandler.HandleWebSocket,
		Log:          log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	if store.Watch != nil {
		changes, err := store.Watch.Watch(gctx)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return hub.Consume(gctx, changes, store.Store)
		})
	}

	g.Go(func() error {
		return watcher.New(courseRepo, hub, cfg.Watcher.Interval, log).Run(gctx)
	})

	g.Go(func() error {
		log.Info("starting LearnHub server", "addr", srv.Addr, "env", cfg.Server.Env, "backend", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
