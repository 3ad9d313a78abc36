package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"retention/dialersync/internal/app/bootstrap"
	"retention/dialersync/internal/app/config"
	"retention/dialersync/internal/app/pkg/logger"
)

var (
	configPath = flag.String("config", config.DefaultPath, "配置文件路径")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 初始化应用
	app, cleanup, err := bootstrap.InitializeApp(ctx, cfg, zapLogger)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer cleanup()

	// 4. 创建 HTTP Server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.GetServerPort()),
		Handler:           app.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 5. 启动 HTTP Server，收到信号后优雅停机
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLogger.Infof(gctx, "[APIServer] Starting HTTP server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Infof(context.Background(), "[APIServer] Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLogger.Errorf(context.Background(), "[APIServer] exited with error: %v", err)
		return
	}
	zapLogger.Infof(context.Background(), "[APIServer] Application stopped")
}
