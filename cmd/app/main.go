package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"nexusboard/internal/config"
	"nexusboard/internal/db"
	httpServer "nexusboard/internal/http"
	"nexusboard/internal/http/handlers"
	"nexusboard/internal/http/middleware"
	"nexusboard/internal/logger"
	"nexusboard/internal/repository"
	"nexusboard/internal/repository/memstore"
	"nexusboard/internal/service"
	"nexusboard/internal/ws"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

type store interface {
	service.Store
	Ping(ctx context.Context) error
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	var st store
	var closeDB func()
	if cfg.DatabaseURL != "" {
		pool := db.Connect(context.Background(), cfg.DatabaseURL)
		st = repository.NewStore(pool)
		closeDB = pool.Close
	} else {
		logger.Warn("DEV_MODE without DATABASE_URL, using in-memory store")
		st = memstore.New()
		closeDB = func() {}
	}

	hub := ws.NewHub()
	bgCtx, stopBg := context.WithCancel(context.Background())

	var notifier service.Notifier = hub
	checks := map[string]handlers.Checker{"database": st.Ping}

	rc := middleware.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rc != nil {
		bridge := ws.NewRedisBridge(rc, cfg.RedisChannel, hub)
		go bridge.Run(bgCtx)
		notifier = bridge
		checks["redis"] = func(ctx context.Context) error { return rc.Ping(ctx).Err() }
	}

	codes, err := service.NewBoardCodeGenerator()
	if err != nil {
		logger.Fatal("board code generator", "error", err)
	}
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	sessions := middleware.NewAuth(
		middleware.NewCookieStore(cfg.SessionSecret, cfg.CookieSecure, int(cfg.TokenTTL.Seconds())),
		tokens,
	)
	access := service.NewAccess(st)

	h := handlers.NewHandler(
		service.NewAuthService(st, service.NewPasswordHasher(cfg.BcryptCost)),
		service.NewBoardService(st, notifier, codes),
		service.NewTaskService(st, notifier),
		service.NewHistoryService(st, notifier),
		tokens,
		sessions,
	)

	r := gin.Default()

	// CORS for a frontend served from another origin
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Handler:  h,
		Health:   handlers.NewHealthHandler(version, checks),
		Sessions: sessions,
		Limiter:  middleware.NewLimiter(rc),
		Limits: httpServer.Limits{
			AuthRate:       cfg.AuthRateLimit,
			AuthWindow:     cfg.AuthRateWindow,
			MutationRate:   cfg.MutationRateLimit,
			MutationWindow: cfg.MutationRateWindow,
		},
		Hub:           hub,
		Access:        access,
		AllowedOrigin: cfg.AllowedOrigin,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "dev_mode", cfg.DevMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http": func(ctx context.Context) error {
				logger.Info("shutting down server")
				err := srv.Shutdown(ctx)
				stopBg()
				hub.Close()
				return err
			},
			"storage": func(ctx context.Context) error {
				closeDB()
				if rc != nil {
					return rc.Close()
				}
				return nil
			},
		},
	)

	exitCode := <-wait
	logger.Info("server exited", "code", exitCode)
	os.Exit(exitCode)
}
