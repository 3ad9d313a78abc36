package request

import (
	"encoding/json"
	"fmt"
	"io"

	"retention/dialersync/internal/app/domains/entity/etagent"
	"retention/dialersync/internal/app/domains/entity/etlead"
	"retention/dialersync/internal/app/domains/services/svlead"
)

// ToCommand 将 Request DTO 转换为服务指令
func (r *AddLeadRequest) ToCommand() svlead.AddLeadCommand {
	return svlead.AddLeadCommand{
		AssignmentID:   r.AssignmentID,
		DealID:         r.DealID,
		AgentProfileID: r.AgentProfileID,
		PhoneNumber:    r.PhoneNumber,
		ListID:         r.ListID,
		CustomerName:   r.CustomerName,
	}
}

// ToIdentifiers 转换为索引标识
func (r *UnassignLeadRequest) ToIdentifiers() etlead.Identifiers {
	return etlead.Identifiers{
		AssignmentID:   r.AssignmentID,
		DealID:         r.DealID,
		PhoneNumber:    r.PhoneNumber,
		ListID:         r.ListID,
		AgentProfileID: r.AgentProfileID,
	}
}

// ToProfile 转换为坐席档案；显式传入的档案视为启用
func (r *AgentProfileRequest) ToProfile() *etagent.Profile {
	return &etagent.Profile{
		ID:          r.ID,
		DisplayName: r.DisplayName,
		Email:       r.Email,
		Username:    r.Username,
		Password:    r.Password,
		CampaignID:  r.CampaignID,
		ListID:      r.ListID,
		UserLevel:   r.UserLevel,
		UserGroup:   r.UserGroup,
		Active:      true,
	}
}

// ToProfiles 批量转换
func (r *RunProvisioningRequest) ToProfiles() []*etagent.Profile {
	profiles := make([]*etagent.Profile, 0, len(r.Agents))
	for _, a := range r.Agents {
		if a == nil {
			continue
		}
		profiles = append(profiles, a.ToProfile())
	}
	return profiles
}

// DecodeProfiles 读取坐席档案 JSON 数组（dialerctl --agents）
func DecodeProfiles(r io.Reader) ([]*etagent.Profile, error) {
	var agents []*AgentProfileRequest
	if err := json.NewDecoder(r).Decode(&agents); err != nil {
		return nil, fmt.Errorf("decode agents file failed: %w", err)
	}
	req := RunProvisioningRequest{Agents: agents}
	return req.ToProfiles(), nil
}
