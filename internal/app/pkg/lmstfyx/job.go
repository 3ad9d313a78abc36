package lmstfyx

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Job 标准 Job 结构：payload.data 携带元信息与业务数据
type Job struct {
	Payload *JobPayload `json:"payload"`
}

type JobPayload struct {
	Data *JobPayloadData `json:"data"`
}

type JobPayloadData struct {
	RequestID  string          `json:"request_id"`
	ActionType string          `json:"action_type"`
	ID         string          `json:"id"`
	Data       json.RawMessage `json:"data"`
}

// Meta Job 元信息
type Meta struct {
	RequestID  string
	ActionType string
	ID         string
}

// NewJob 构造标准 Job；requestID 为空时生成
func NewJob(requestID, actionType, id string, data interface{}) (*Job, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal job data failed: %w", err)
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return &Job{Payload: &JobPayload{Data: &JobPayloadData{
		RequestID:  requestID,
		ActionType: actionType,
		ID:         id,
		Data:       raw,
	}}}, nil
}

// ParseJob 解析并校验 Job
func ParseJob(raw []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}
	if job.Payload == nil || job.Payload.Data == nil {
		return nil, fmt.Errorf("invalid job structure: payload.data is nil")
	}
	if job.Payload.Data.ActionType == "" {
		return nil, fmt.Errorf("invalid job structure: action_type is empty")
	}
	if job.Payload.Data.RequestID == "" {
		job.Payload.Data.RequestID = uuid.New().String()
	}
	return &job, nil
}

// Meta 元信息
func (j *Job) Meta() Meta {
	d := j.Payload.Data
	return Meta{RequestID: d.RequestID, ActionType: d.ActionType, ID: d.ID}
}

// Decode 解出业务数据
func (j *Job) Decode(v interface{}) error {
	if len(j.Payload.Data.Data) == 0 {
		return fmt.Errorf("job data is empty")
	}
	return json.Unmarshal(j.Payload.Data.Data, v)
}

// Marshal 序列化
func (j *Job) Marshal() ([]byte, error) {
	return json.Marshal(j)
}
