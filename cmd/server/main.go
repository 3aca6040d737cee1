package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourname/habitroom/internal"
	"github.com/yourname/habitroom/internal/api"
	"github.com/yourname/habitroom/internal/auth"
	"github.com/yourname/habitroom/internal/config"
	"github.com/yourname/habitroom/internal/hub"
	"github.com/yourname/habitroom/internal/notify"
	"github.com/yourname/habitroom/internal/storage"
)

type app struct {
	logger internal.Logger
	rooms  storage.RoomRepository
}

func (a *app) Logger() internal.Logger       { return a.logger }
func (a *app) Rooms() storage.RoomRepository { return a.rooms }

func main() {
	cfg := config.Load()

	var zl *zap.Logger
	var err error
	if cfg.Env == "development" {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zl.Sync()
	logger := internal.NewZapLogger(zl.Sugar())

	if dir := filepath.Dir(cfg.RoomsFile); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}

	rooms, remote, local, err := storage.NewRepositories(cfg.DBType, cfg.DBDSN, cfg.RoomsFile, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer local.Close()

	// Push feed when the remote store is up, poll reconciliation otherwise.
	var observer notify.RoomObserver
	if remote != nil {
		observer = notify.NewListenObserver(remote.Pool(), logger)
	} else {
		observer = notify.NewPollObserver(rooms, cfg.PollInterval, logger)
	}
	defer observer.Close()

	h := hub.New(observer.Events(), logger)
	go h.Run()

	var provider auth.Provider
	if cfg.Env == "development" {
		provider = auth.NewLocalProvider(cfg.AuthToken, logger)
	} else {
		provider = auth.NewTokenProvider(cfg.JWTSecret, logger)
	}

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestIDMiddleware())
	api.Register(r, &app{logger: logger, rooms: rooms}, provider, h)

	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	go func() {
		logger.Infof("server running on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("failed to start server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	h.Close()
}
