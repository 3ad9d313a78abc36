package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"retention/dialersync/internal/app/config"
	"retention/dialersync/internal/app/pkg/lmstfyx"
	"retention/dialersync/internal/framework"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance 管理所有 Worker 的生命周期
type ManagerInstance struct {
	ctx        context.Context
	cfgs       []config.WorkerConfig
	source     framework.MessageSource
	proc       lmstfyx.Proc
	workers    []Worker
	closing    *atomic.Bool
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	logger     framework.Logger
}

// NewManagerInstance 创建 Manager
func NewManagerInstance(cfgs []config.WorkerConfig, source framework.MessageSource, proc lmstfyx.Proc, log framework.Logger) (*ManagerInstance, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("at least one worker is required")
	}
	for _, c := range cfgs {
		if c.QueueName == "" {
			return nil, fmt.Errorf("worker %q: queue_name is required", c.Name)
		}
	}

	m := &ManagerInstance{
		ctx:        context.Background(),
		cfgs:       cfgs,
		source:     source,
		proc:       proc,
		workers:    make([]Worker, 0, len(cfgs)),
		closing:    atomic.NewBool(false),
		shutdownCh: make(chan struct{}),
		logger:     log,
	}
	m.loadWorkers()
	return m, nil
}

// Start 启动全部 Worker，阻塞到 Shutdown
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting %d workers...", len(m.workers))

	m.mu.Lock()
	if m.closing.Load() {
		m.mu.Unlock()
		return nil
	}
	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}
	m.mu.Unlock()

	<-m.shutdownCh
	return nil
}

// Shutdown 优雅退出，可重复调用
func (m *ManagerInstance) Shutdown() {
	m.mu.Lock()
	if !m.closing.CAS(false, true) {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	for _, worker := range m.workers {
		m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
		worker.Shutdown()
	}
	m.wg.Wait()

	close(m.shutdownCh)
	m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
}

func (m *ManagerInstance) loadWorkers() {
	for _, c := range m.cfgs {
		subCfg := framework.SubscriberConfig{
			QueueName:    c.QueueName,
			Concurrency:  c.Subscriber.Threads,
			Rate:         c.Subscriber.Rate,
			Timeout:      c.Subscriber.Timeout,
			TTR:          c.Subscriber.TTR,
			ErrorBackoff: c.Subscriber.ErrorBackoff,
		}
		procCfg := framework.ProcessorConfig{
			Concurrency: c.Processor.Threads,
			BufferSize:  c.Processor.BufferSize,
			Timeout:     c.Processor.Timeout,
		}

		m.workers = append(m.workers, NewWorkerInstance(m.ctx, c.Name, subCfg, procCfg, m.source, m.proc, m.logger))
	}
}
