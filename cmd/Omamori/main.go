package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	https_server "Omamori/api/http"
	"Omamori/internal/config"
	"Omamori/internal/initial"
	"Omamori/pkg/redis"
	"Omamori/pkg/zlog"

	"go.uber.org/zap"
)

func main() {
	conf := config.GetConfig()
	zlog.Init(conf.LogConfig.LogPath, conf.LogConfig.Debug)
	defer zlog.Sync()

	db, err := initial.InitGorm(conf.DatabaseConfig)
	if err != nil {
		zlog.Fatal("database init failed", zap.Error(err))
	}
	initial.InitRedis(conf.RedisConfig)
	pub, topic := initial.InitKafka(conf.KafkaConfig)

	server, err := https_server.NewServer(conf, db, pub, topic)
	if err != nil {
		zlog.Fatal("invalid monitoring config", zap.Error(err))
	}
	if err := server.StartWorkers(); err != nil {
		zlog.Fatal("background workers failed to start", zap.Error(err))
	}

	addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
	srv := &http.Server{Addr: addr, Handler: server.GE}
	go func() {
		zlog.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}
	server.StopWorkers()
	_ = redis.Close()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zlog.Info("server stopped")
}
