package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/carepulse-appointments/internal/api"
	"github.com/hackgods/carepulse-appointments/internal/appointment"
	"github.com/hackgods/carepulse-appointments/internal/config"
	"github.com/hackgods/carepulse-appointments/internal/db"
	"github.com/hackgods/carepulse-appointments/internal/logger"
	redisclient "github.com/hackgods/carepulse-appointments/internal/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "text").Fatalf("config load error: %v", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Infof("api-server starting up env=%s http_port=%s version=%s", cfg.Env, cfg.HTTPPort, cfg.Version)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		migCtx, cancelMig := context.WithTimeout(rootCtx, 30*time.Second)
		applied, err := db.Migrate(migCtx, cfg.PostgresDSN)
		cancelMig()
		if err != nil {
			log.Fatalf("migration error: %v", err)
		}
		log.Infof("migrations applied: %v", applied)
	}

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Info("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(rootCtx, redisclient.Options{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warnf("error closing redis: %v", err)
		}
	}()
	log.Info("connected to Redis")

	roster := appointment.DefaultRoster()
	if len(cfg.Physicians) > 0 {
		roster = appointment.NewRoster(cfg.Physicians)
	}

	repo := appointment.NewPgRepository(pgPool)
	gateway := appointment.NewLockedGateway(repo, redisclient.NewRedisLocker(rdb, cfg.LockTTL))
	svc := appointment.NewService(gateway, appointment.NewValidator(roster), log)

	router := api.NewRouter(api.RouterConfig{
		Service:    svc,
		Queries:    appointment.NewQueries(repo),
		Physicians: roster,
		Postgres:   pgPool,
		Redis:      api.RedisPinger{Client: rdb},
		Limiter:    api.NewSubmitLimiter(cfg.SubmitRate, cfg.SubmitBurst),
		Log:        log,
		Env:        cfg.Env,
		Version:    cfg.Version,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort("", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-errCh:
		if err != nil {
			log.Errorf("http server error: %v", err)
		}
	}

	log.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
}
