package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inari-web/database/migrations"
	"inari-web/internal/api"
	"inari-web/internal/api/handlers"
	"inari-web/internal/api/views"
	"inari-web/internal/apiclient"
	"inari-web/internal/auth"
	"inari-web/internal/config"
	"inari-web/internal/database"
	"inari-web/internal/logger"
	"inari-web/internal/metrics"
	"inari-web/internal/storage"
	"inari-web/internal/thumbnails"
	"inari-web/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	zl, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer zl.Sync()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector("inari")
	client := newAPIClient(cfg, collector, zl)

	store, err := newSessionStore(cfg, zl)
	if err != nil {
		zl.Fatal("Failed to create session store", zap.Error(err))
	}

	gate, err := newGate(cfg, store, zl)
	if err != nil {
		zl.Fatal("Failed to set up authentication", zap.Error(err))
	}
	if gate.OIDC != nil {
		defer gate.OIDC.Close()
	}
	go gate.Janitor(ctx, 10*time.Minute)

	thumbStore, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		zl.Fatal("Failed to initialize storage provider", zap.Error(err))
	}

	ws := websocket.NewManager(zl)
	defer ws.Close()

	renderer, err := views.Load(cfg.Display.Location())
	if err != nil {
		zl.Fatal("Failed to load templates", zap.Error(err))
	}

	h := handlers.New(handlers.Options{
		Client:     client,
		Thumbnails: thumbnails.NewService(thumbStore, cfg.Storage.URLTTL, zl),
		Websocket:  ws,
		Gate:       gate,
		Metrics:    collector,
		Logger:     zl,
		Location:   cfg.Display.Location(),
		PageSize:   cfg.Display.PageSize,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(h, renderer, gate, collector, zl),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("Server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("env", cfg.Server.Env),
			zap.String("auth", cfg.Auth.Provider),
			zap.String("storage", cfg.Storage.Provider),
			zap.Bool("mockAPI", cfg.API.Mock),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}
}

func newAPIClient(cfg *config.Config, collector *metrics.Collector, zl *zap.Logger) apiclient.Client {
	if cfg.API.Mock {
		zl.Warn("Using the in-memory mock API")
		return apiclient.NewMockClient()
	}
	return apiclient.NewHTTPClient(cfg.API.BaseURL, cfg.API.Timeout,
		apiclient.WithMetrics(collector),
		apiclient.WithLogger(zl),
	)
}

func newSessionStore(cfg *config.Config, zl *zap.Logger) (auth.SessionStore, error) {
	if cfg.Session.Store != config.SessionStorePostgres {
		return auth.NewMemoryStore(), nil
	}

	db, err := database.Initialize(cfg, zl)
	if err != nil {
		return nil, err
	}
	if err := migrations.Migrate(db); err != nil {
		return nil, err
	}
	return auth.NewGormStore(db), nil
}

func newGate(cfg *config.Config, store auth.SessionStore, zl *zap.Logger) (*auth.Gate, error) {
	gate := auth.NewGate(cfg.Auth.Provider, store, auth.CookieSettings{
		Name:   cfg.Session.CookieName,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.Secure,
	}, zl)

	switch cfg.Auth.Provider {
	case config.AuthProviderLocal:
		expiration, err := cfg.Auth.JWT.Duration()
		if err != nil {
			return nil, err
		}
		gate.Local = auth.NewLocalProvider(cfg.Auth.Local.Username, cfg.Auth.Local.PasswordHash, cfg.Auth.JWT.Secret, expiration)
	case config.AuthProviderOIDC:
		provider, err := auth.NewOIDCProvider(cfg.Auth.OIDC, zl)
		if err != nil {
			return nil, err
		}
		gate.OIDC = provider
	}
	return gate, nil
}
