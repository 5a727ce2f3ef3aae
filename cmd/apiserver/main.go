package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cdp/scansvc/internal/app"
	"cdp/scansvc/internal/server/handlers/scan"
	"cdp/scansvc/internal/server/routers"
	"cdp/scansvc/pkg/config"
	"cdp/scansvc/pkg/infra/mysql"
	"cdp/scansvc/pkg/infra/redis"
	"cdp/scansvc/pkg/lmstfy"
	"cdp/scansvc/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/apiserver.yaml", "配置文件路径")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// 3. 初始化基础设施
	scanDAO, err := mysql.NewScanDAO(cfg.MySQL.DSN)
	if err != nil {
		log.Fatalf("Failed to create scan dao: %v", err)
	}
	defer scanDAO.Close()

	pubsub, err := redis.NewPubSub(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to create redis pubsub: %v", err)
	}
	defer pubsub.Close()

	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		log.Fatalf("Failed to create lmstfy client: %v", err)
	}

	// 4. 组装扫描服务与 HTTP 处理器
	scanService, err := app.BuildScanService(cfg, scanDAO, zapLogger)
	if err != nil {
		log.Fatalf("Failed to build scan service: %v", err)
	}

	scanHandler := scan.NewScanHandler(
		scanService,
		scanDAO,
		lmstfyClient,
		pubsub,
		scan.Options{
			ScanQueue:     cfg.Lmstfy.ScanQueue,
			NotifyChannel: cfg.Server.NotifyQueue,
			MaxWait:       cfg.Server.MaxWait,
		},
		zapLogger,
	)

	engine := routers.SetupRoutes(scanHandler, zapLogger)

	// 5. 启动 HTTP Server（后台 goroutine）
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	// 6. 优雅停机处理
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("Received shutdown signal, gracefully shutting down...")
		gracefulShutdown(server)
	case err := <-serverErrChan:
		log.Fatalf("HTTP server error: %v", err)
	}

	log.Println("Application stopped")
}

// gracefulShutdown 优雅停机
func gracefulShutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped gracefully")
	}
}
