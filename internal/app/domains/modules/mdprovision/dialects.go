package mdprovision

import (
	"strconv"

	"retention/dialersync/internal/app/domains/entity/etagent"
	"retention/dialersync/internal/app/infra/dialer"
)

// Dialect add_user 的一种参数命名方式
type Dialect struct {
	Name  string
	Build func(t etagent.UserTarget) dialer.Params
}

// UserDialects 按顺序尝试，越往后越冗长；最后一个同时带上所有已知别名
// 无法提前得知目标部署支持哪一种，只能依次试
var UserDialects = []Dialect{
	{Name: "agent", Build: agentDialect},
	{Name: "user_id", Build: userIDDialect},
	{Name: "new", Build: newDialect},
	{Name: "stage_add", Build: stageAddDialect},
	{Name: "maximal", Build: maximalDialect},
}

func agentDialect(t etagent.UserTarget) dialer.Params {
	return dialer.Params{
		dialer.P("agent_user", t.Username),
		dialer.P("agent_pass", t.Password),
		dialer.P("agent_full_name", t.FullName),
		dialer.P("agent_user_level", level(t)),
		dialer.P("agent_user_group", t.UserGroup),
	}
}

func userIDDialect(t etagent.UserTarget) dialer.Params {
	return dialer.Params{
		dialer.P("user_id", t.Username),
		dialer.P("password", t.Password),
		dialer.P("full_name", t.FullName),
		dialer.P("user_level", level(t)),
		dialer.P("user_group", t.UserGroup),
	}
}

func newDialect(t etagent.UserTarget) dialer.Params {
	return dialer.Params{
		dialer.P("new_user", t.Username),
		dialer.P("new_pass", t.Password),
		dialer.P("new_full_name", t.FullName),
		dialer.P("new_user_level", level(t)),
		dialer.P("new_user_group", t.UserGroup),
	}
}

func stageAddDialect(t etagent.UserTarget) dialer.Params {
	return dialer.Params{
		dialer.P("stage", "ADD"),
		dialer.P("users_user", t.Username),
		dialer.P("users_pass", t.Password),
		dialer.P("full_name", t.FullName),
		dialer.P("user_level", level(t)),
		dialer.P("user_group", t.UserGroup),
	}
}

func maximalDialect(t etagent.UserTarget) dialer.Params {
	lv := level(t)
	return dialer.Params{
		dialer.P("stage", "ADD"),
		dialer.P("agent_user", t.Username),
		dialer.P("user_id", t.Username),
		dialer.P("new_user", t.Username),
		dialer.P("users_user", t.Username),
		dialer.P("agent_pass", t.Password),
		dialer.P("password", t.Password),
		dialer.P("new_pass", t.Password),
		dialer.P("users_pass", t.Password),
		dialer.P("agent_full_name", t.FullName),
		dialer.P("new_full_name", t.FullName),
		dialer.P("full_name", t.FullName),
		dialer.P("agent_user_level", lv),
		dialer.P("new_user_level", lv),
		dialer.P("user_level", lv),
		dialer.P("agent_user_group", t.UserGroup),
		dialer.P("new_user_group", t.UserGroup),
		dialer.P("user_group", t.UserGroup),
		dialer.P("active", "Y"),
	}
}

func level(t etagent.UserTarget) string {
	if t.UserLevel <= 0 {
		return "1"
	}
	return strconv.Itoa(t.UserLevel)
}
