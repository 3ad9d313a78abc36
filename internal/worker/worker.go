package worker

import (
	"context"
	"sync"

	"retention/dialersync/internal/app/pkg/lmstfyx"
	"retention/dialersync/internal/framework"
)

// Worker 接口
type Worker interface {
	Start()
	Shutdown()
	GetName() string
}

// WorkerInstance 一个队列对应一组 Subscriber + Processor
type WorkerInstance struct {
	ctx        context.Context
	name       string
	subscriber *framework.Subscriber
	processor  *framework.Processor
	inputChan  chan *framework.Message
	shutdownCh chan struct{}
	logger     framework.Logger

	mu      sync.Mutex
	running bool
	stopped bool
}

// NewWorkerInstance 创建 Worker 实例
func NewWorkerInstance(
	ctx context.Context,
	name string,
	subscriberCfg framework.SubscriberConfig,
	processorCfg framework.ProcessorConfig,
	source framework.MessageSource,
	proc lmstfyx.Proc,
	log framework.Logger,
) *WorkerInstance {
	processorCfg = processorCfg.WithDefaults()

	return &WorkerInstance{
		ctx:        ctx,
		name:       name,
		subscriber: framework.NewSubscriber(subscriberCfg, source, log),
		processor:  framework.NewProcessor(processorCfg, proc, source, log),
		inputChan:  make(chan *framework.Message, processorCfg.BufferSize),
		shutdownCh: make(chan struct{}),
		logger:     log,
	}
}

// Start 启动 Worker，阻塞到 Shutdown 完成；Shutdown 之后调用直接返回
func (w *WorkerInstance) Start() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.processor.Start(w.ctx, w.inputChan)
	w.subscriber.Start(w.ctx, w.inputChan)
	w.running = true
	w.mu.Unlock()

	w.logger.Infof(w.ctx, "[Worker] %s started", w.name)
	<-w.shutdownCh
}

// Shutdown 优雅退出：停止拉取 → 等待拉取退出 → Processor Drain → 等待处理退出
func (w *WorkerInstance) Shutdown() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	running := w.running
	w.mu.Unlock()

	w.logger.Infof(w.ctx, "[Worker] %s began to close", w.name)

	if running {
		w.subscriber.Stop()
		w.subscriber.Wait()

		w.processor.SignalShutdown()
		w.processor.Wait()
	}

	close(w.shutdownCh)
	w.logger.Infof(w.ctx, "[Worker] %s shutdown complete", w.name)
}

// GetName 获取 Worker 名称
func (w *WorkerInstance) GetName() string {
	return w.name
}
