// Package worker 管理扫描 Worker 的生命周期。
package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"cdp/scansvc/internal/app"
	"cdp/scansvc/internal/domains"
	"cdp/scansvc/internal/framework"
	"cdp/scansvc/internal/model"
	"cdp/scansvc/pkg/config"
	"cdp/scansvc/pkg/infra/mysql"
	"cdp/scansvc/pkg/infra/redis"
	"cdp/scansvc/pkg/lmstfy"
	"cdp/scansvc/pkg/logger"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance Manager 实例
type ManagerInstance struct {
	ctx          context.Context
	cfg          *config.Config
	lmstfyClient *lmstfy.Client
	scanDAO      *mysql.ScanDAO
	pubsub       *redis.PubSub
	deps         *domains.Deps
	workers      []Worker
	closing      *atomic.Bool
	shutdownCh   chan struct{}
	wg           sync.WaitGroup
	logger       logger.Logger
}

// NewManagerInstance 创建 Manager（组装 Worker 侧完整依赖图）
func NewManagerInstance(cfg *config.Config, log logger.Logger) (Manager, error) {
	ctx := context.Background()

	// 初始化 lmstfy 客户端
	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create lmstfy client: %w", err)
	}

	// 初始化存储层
	scanDAO, err := mysql.NewScanDAO(cfg.MySQL.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan dao: %w", err)
	}

	pubsub, err := redis.NewPubSub(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis pubsub: %w", err)
	}

	// 组装扫描服务（检测器 → 编排器 → 服务）
	scanService, err := app.BuildScanService(cfg, scanDAO, log)
	if err != nil {
		return nil, err
	}

	deps := &domains.Deps{
		ScanService: scanService,
		Notifier: &scanNotifier{
			pubsub:  pubsub,
			channel: cfg.Server.NotifyQueue,
		},
	}

	log.Infof(ctx, "[Manager] Initialized with scan queue: %s", cfg.Lmstfy.ScanQueue)

	return &ManagerInstance{
		ctx:          ctx,
		cfg:          cfg,
		lmstfyClient: lmstfyClient,
		scanDAO:      scanDAO,
		pubsub:       pubsub,
		deps:         deps,
		closing:      atomic.NewBool(false),
		shutdownCh:   make(chan struct{}),
		workers:      make([]Worker, 0),
		logger:       log,
	}, nil
}

// Start 启动 Manager
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	// 1. 加载所有 Worker
	if err := m.loadWorkers(); err != nil {
		return fmt.Errorf("failed to load workers: %w", err)
	}

	m.logger.Infof(m.ctx, "[Manager] All workers loaded, count: %d", len(m.workers))

	// 2. 启动所有 Worker（每个 Worker 在独立 goroutine）
	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}

	m.logger.Infof(m.ctx, "[Manager] Start success")

	// 3. 阻塞等待退出信号
	<-m.shutdownCh

	return nil
}

// Shutdown 优雅退出
func (m *ManagerInstance) Shutdown() {
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	// 原子操作，保证并发安全
	if m.closing.CAS(false, true) {
		// 1. 所有 Worker 安全退出
		for _, worker := range m.workers {
			m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
			worker.Shutdown()
		}

		// 2. 等待所有 Worker 退出
		m.wg.Wait()

		// 3. 释放存储层连接
		if err := m.scanDAO.Close(); err != nil {
			m.logger.Warnf(m.ctx, "[Manager] Close scan dao failed: %v", err)
		}
		if err := m.pubsub.Close(); err != nil {
			m.logger.Warnf(m.ctx, "[Manager] Close redis failed: %v", err)
		}

		// 4. 关闭信号通道
		close(m.shutdownCh)

		m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
	}
}

// loadWorkers 加载所有 Worker
func (m *ManagerInstance) loadWorkers() error {
	// 遍历配置中的所有 Worker
	for _, workerCfg := range m.cfg.Workers {
		queueName := workerCfg.QueueName
		if queueName == "" {
			queueName = m.cfg.Lmstfy.ScanQueue
		}

		// 创建 Subscriber 配置
		subCfg := &framework.SubscriberConfig{
			QueueName:    queueName,
			Concurrency:  workerCfg.Subscriber.Threads,
			Rate:         workerCfg.Subscriber.Rate,
			Timeout:      workerCfg.Subscriber.Timeout,
			TTR:          workerCfg.Subscriber.TTR,
			ErrorBackoff: workerCfg.Subscriber.ErrorBackoff,
		}

		// 创建 Processor 配置
		procCfg := &framework.ProcessorConfig{
			Concurrency: workerCfg.Processor.Threads,
			BufferSize:  workerCfg.Processor.BufferSize,
			Timeout:     workerCfg.Processor.Timeout,
		}

		// 获取 GetProcess 函数
		getProcess := domains.GetProcess(m.logger, m.deps)

		// 创建 Worker 实例
		worker, err := NewWorkerInstance(
			m.ctx,
			workerCfg.Name,
			subCfg,
			procCfg,
			m.lmstfyClient, // MessageSource
			getProcess,     // lmstfyx.Proc
			m.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create worker %s: %w", workerCfg.Name, err)
		}

		m.workers = append(m.workers, worker)
	}

	return nil
}

// scanNotifier 扫描完成通知的 Redis 实现
type scanNotifier struct {
	pubsub  *redis.PubSub
	channel string
}

// NotifyScanComplete 发布扫描完成通知
func (n *scanNotifier) NotifyScanComplete(ctx context.Context, notification *model.ScanNotification) error {
	return n.pubsub.PublishScanComplete(ctx, n.channel, notification)
}
