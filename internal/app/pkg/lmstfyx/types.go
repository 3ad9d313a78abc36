package lmstfyx

import (
	"context"

	"github.com/bitleak/lmstfy/client"
)

// Proc 业务处理函数类型
type Proc func(ctx context.Context, job *client.Job) *JobResp

// JobRespStatus 消息处理结果状态
type JobRespStatus int

const (
	// JobRespStatusSuccess 处理成功，ACK 消息
	JobRespStatusSuccess JobRespStatus = iota
	// JobRespStatusRelease 可重试，不 ACK，TTR 到期后重新投递
	JobRespStatusRelease
	// JobRespStatusBury 不可重试，ACK 并记录日志
	JobRespStatusBury
)

func (s JobRespStatus) String() string {
	switch s {
	case JobRespStatusSuccess:
		return "success"
	case JobRespStatusRelease:
		return "release"
	case JobRespStatusBury:
		return "bury"
	default:
		return "unknown"
	}
}

// JobResp 消息处理结果
type JobResp struct {
	Action JobRespStatus
	Data   []byte
}

// Success 处理成功
func Success(data []byte) *JobResp {
	return &JobResp{Action: JobRespStatusSuccess, Data: data}
}

// Release 等待重投
func Release() *JobResp {
	return &JobResp{Action: JobRespStatusRelease}
}

// Bury 丢弃
func Bury() *JobResp {
	return &JobResp{Action: JobRespStatusBury}
}
