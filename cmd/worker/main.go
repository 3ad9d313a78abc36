package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"retention/dialersync/internal/app/bootstrap"
	"retention/dialersync/internal/app/config"
	"retention/dialersync/internal/app/pkg/logger"
	"retention/dialersync/internal/jobs"
	"retention/dialersync/internal/worker"
)

var (
	configPath = flag.String("config", config.DefaultPath, "配置文件路径")
)

func main() {
	flag.Parse()

	log.Println("========================================")
	log.Println("  DIALERSYNC Worker Starting...")
	log.Println("========================================")

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	log.Printf("Config loaded: %s, env: %s, log_level: %s\n", cfg.App.Name, cfg.App.Env, cfg.App.LogLevel)

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 初始化依赖
	app, cleanup, err := bootstrap.InitializeApp(ctx, cfg, zapLogger)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer cleanup()

	// 4. 创建 Manager
	mgr, err := worker.NewManagerInstance(cfg.Workers, app.Lmstfy, jobs.GetProcess(zapLogger, app.LeadService), zapLogger)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	// 5. 启动 Manager，收到信号后优雅关闭
	g, gctx := errgroup.WithContext(ctx)
	g.Go(mgr.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Println("========================================")
		log.Println("  Shutting down Worker...")
		log.Println("========================================")
		mgr.Shutdown()
		return nil
	})

	log.Println("Worker started. Press Ctrl+C to shutdown.")
	if err := g.Wait(); err != nil {
		log.Printf("Worker exited with error: %v", err)
		return
	}

	log.Println("========================================")
	log.Println("  Worker exited gracefully")
	log.Println("========================================")
}
