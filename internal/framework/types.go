package framework

import (
	"context"
	"time"
)

// Message 消息结构（框架内部流转）
type Message struct {
	ID    string
	Queue string
	Data  []byte
}

// MessageSource 消息源接口（适配不同 MQ）
type MessageSource interface {
	// Consume 阻塞拉取，超时未拉到返回 nil, nil
	Consume(queue string, timeout time.Duration, ttr time.Duration) (*Message, error)

	// Ack 确认消息（删除消息）
	Ack(queue string, jobID string) error
}

// Logger 日志接口
type Logger interface {
	Debugf(ctx context.Context, format string, args ...interface{})
	Infof(ctx context.Context, format string, args ...interface{})
	Warnf(ctx context.Context, format string, args ...interface{})
	Errorf(ctx context.Context, format string, args ...interface{})
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	QueueName    string        // 队列名称
	Concurrency  int           // 并发拉取数
	Timeout      time.Duration // 拉取超时
	TTR          time.Duration // Time-To-Run
	Rate         time.Duration // 拉取间隔
	ErrorBackoff time.Duration // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Concurrency int           // 并发处理数，默认 1 以保持同一队列内的先后顺序
	BufferSize  int           // inputChan 缓冲区大小
	Timeout     time.Duration // 单个消息处理超时
}

// 默认值
const (
	defaultConcurrency  = 1
	defaultPullTimeout  = 3 * time.Second
	defaultTTR          = 60 * time.Second
	defaultErrorBackoff = time.Second
	defaultProcTimeout  = 30 * time.Second
)

// WithDefaults 填充缺省值
func (c SubscriberConfig) WithDefaults() SubscriberConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultPullTimeout
	}
	if c.TTR <= 0 {
		c.TTR = defaultTTR
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = defaultErrorBackoff
	}
	return c
}

// WithDefaults 填充缺省值
func (c ProcessorConfig) WithDefaults() ProcessorConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.BufferSize < 0 {
		c.BufferSize = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultProcTimeout
	}
	return c
}
