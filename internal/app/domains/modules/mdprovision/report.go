package mdprovision

import (
	"fmt"
	"strings"

	"retention/dialersync/internal/app/domains/entity/etagent"
	"retention/dialersync/internal/app/pkg/errorx"
)

// 实体确认方式
const (
	ViaAPI        = "api"
	ViaExists     = "exists"
	ViaRowStore   = "row_store"
	ViaUnverified = "unverified"
)

// EntityResult 单个实体的开通结果
type EntityResult struct {
	Kind     etagent.Kind `json:"kind"`
	ID       string       `json:"id"`
	OK       bool         `json:"ok"`
	Via      string       `json:"via,omitempty"`
	Dialect  string       `json:"dialect,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
	Error    string       `json:"error,omitempty"`
}

func (r *EntityResult) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Created 三个实体是否已确认存在
type Created struct {
	Campaign bool `json:"campaign"`
	List     bool `json:"list"`
	User     bool `json:"user"`
}

// AgentReport 单个坐席的开通报告
type AgentReport struct {
	ProfileID string          `json:"profile_id"`
	Mapping   etagent.Mapping `json:"mapping"`
	Created   Created         `json:"created"`
	Warnings  []string        `json:"warnings"`
	Errors    []string        `json:"errors"`
}

// OK 名单与账号已确认且无错误
// 活动缺失只记告警（需人工在平台控制台创建），不计入失败
func (r *AgentReport) OK() bool {
	return r.Created.List && r.Created.User && len(r.Errors) == 0
}

func (r *AgentReport) absorb(res EntityResult) {
	r.Warnings = append(r.Warnings, res.Warnings...)
	if res.Error != "" {
		r.Errors = append(r.Errors, fmt.Sprintf("%s %s: %s", res.Kind, res.ID, res.Error))
	}
}

// StatusLine 每个坐席一行的状态输出
func (r *AgentReport) StatusLine() string {
	var b strings.Builder
	fmt.Fprintf(&b, "agent=%s user=%s campaign=%s list=%s created.campaign=%t created.list=%t created.user=%t",
		r.ProfileID, r.Mapping.Username, r.Mapping.CampaignID, r.Mapping.ListID,
		r.Created.Campaign, r.Created.List, r.Created.User)
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, " warnings=%q", r.Warnings)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, " errors=%q", r.Errors)
	}
	return b.String()
}

// BatchReport 批量开通报告
type BatchReport struct {
	Agents []*AgentReport `json:"agents"`
	Total  int            `json:"total"`
	Failed int            `json:"failed"`
}

// Err 有坐席失败时返回 PartialBatchFailure
func (r *BatchReport) Err() error {
	if r.Failed == 0 {
		return nil
	}
	return errorx.PartialBatch(r.Failed, r.Total)
}
