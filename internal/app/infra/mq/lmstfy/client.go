package lmstfy

import (
	"context"
	"fmt"
	"time"

	"github.com/bitleak/lmstfy/client"

	"retention/dialersync/internal/app/pkg/lmstfyx"
	"retention/dialersync/internal/framework"
)

// 发布参数
const (
	defaultTTL   uint32 = 24 * 3600
	defaultTries uint16 = 3
)

// Client Lmstfy 客户端封装
// 同时作为 worker 的消息源和 apiserver 的发布端
type Client struct {
	cli       *client.LmstfyClient
	namespace string
}

// NewClient 创建 Lmstfy 客户端
func NewClient(host string, port int, namespace, token string) *Client {
	return &Client{
		cli:       client.NewLmstfyClient(host, port, namespace, token),
		namespace: namespace,
	}
}

// Consume 消费消息（实现 framework.MessageSource）
func (c *Client) Consume(queue string, timeout time.Duration, ttr time.Duration) (*framework.Message, error) {
	job, err := c.cli.Consume(queue, uint32(ttr.Seconds()), uint32(timeout.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("lmstfy consume failed: %w", err)
	}
	// 超时未拉到消息
	if job == nil {
		return nil, nil
	}

	return &framework.Message{
		ID:    job.ID,
		Queue: job.Queue,
		Data:  job.Data,
	}, nil
}

// Ack 确认消息（实现 framework.MessageSource）
func (c *Client) Ack(queue string, jobID string) error {
	if err := c.cli.Ack(queue, jobID); err != nil {
		return fmt.Errorf("lmstfy ack failed: %w", err)
	}
	return nil
}

// Publish 发布标准 Job，返回 job_id
func (c *Client) Publish(ctx context.Context, queue string, job *lmstfyx.Job) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := job.Marshal()
	if err != nil {
		return "", err
	}

	jobID, err := c.cli.Publish(queue, data, defaultTTL, defaultTries, 0)
	if err != nil {
		return "", fmt.Errorf("lmstfy publish failed: %w", err)
	}
	return jobID, nil
}
