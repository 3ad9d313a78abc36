package mdprovision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retention/dialersync/internal/app/domains/entity/etagent"
	"retention/dialersync/internal/app/infra/dialer"
	"retention/dialersync/internal/app/pkg/errorx"
	"retention/dialersync/internal/app/pkg/logger"
)

// fakeCaller 按函数名返回预设响应
type fakeCaller struct {
	mu      sync.Mutex
	respond func(function string, params dialer.Params) (string, error)
	calls   []string
}

func (f *fakeCaller) Call(_ context.Context, function string, params dialer.Params) (*dialer.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, function)
	f.mu.Unlock()

	body, err := f.respond(function, params)
	if err != nil {
		return nil, err
	}
	return &dialer.Result{HTTPStatus: http.StatusOK, RawBody: body}, nil
}

func (f *fakeCaller) count(function string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == function {
			n++
		}
	}
	return n
}

// fakeRepo 内存行存储
type fakeRepo struct {
	campaigns map[string]bool
	lists     map[string]etagent.ListTarget
	users     map[string]etagent.UserTarget
	err       error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		campaigns: map[string]bool{},
		lists:     map[string]etagent.ListTarget{},
		users:     map[string]etagent.UserTarget{},
	}
}

func (r *fakeRepo) CampaignExists(_ context.Context, id string) (bool, error) {
	return r.campaigns[id], r.err
}

func (r *fakeRepo) ListExists(_ context.Context, id string) (bool, error) {
	_, ok := r.lists[id]
	return ok, r.err
}

func (r *fakeRepo) InsertList(_ context.Context, t etagent.ListTarget) error {
	r.lists[t.ListID] = t
	return nil
}

func (r *fakeRepo) UserExists(_ context.Context, username string) (bool, error) {
	_, ok := r.users[username]
	return ok, r.err
}

func (r *fakeRepo) InsertUser(_ context.Context, t etagent.UserTarget) error {
	r.users[t.Username] = t
	return nil
}

// usernameOf 从任一方言中取出用户名
func usernameOf(params dialer.Params) string {
	for _, key := range []string{"agent_user", "user_id", "new_user", "users_user"} {
		if v, ok := params.Get(key).(string); ok && v != "" {
			return v
		}
	}
	return ""
}

var userTarget = etagent.UserTarget{ProfileID: "p1", Username: "jane_roe", Password: "pw", FullName: "Jane Roe", UserLevel: 1}

func TestEnsureUser_Idempotent(t *testing.T) {
	created := map[string]bool{}
	caller := &fakeCaller{respond: func(fn string, params dialer.Params) (string, error) {
		user := usernameOf(params)
		if created[user] {
			return "ERROR: add_user USER ALREADY EXISTS - " + user, nil
		}
		created[user] = true
		return "SUCCESS: add_user USER HAS BEEN ADDED - " + user, nil
	}}
	engine := NewEngine(caller, nil, Config{}, logger.NewNop())

	first := engine.EnsureUser(context.Background(), userTarget)
	second := engine.EnsureUser(context.Background(), userTarget)

	assert.True(t, first.OK)
	assert.Equal(t, ViaAPI, first.Via)
	assert.True(t, second.OK)
	assert.Equal(t, ViaExists, second.Via)
	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, second.Error)
	assert.Equal(t, 2, caller.count(fnAddUser))
}

func TestEnsureUser_FallsThroughDialects(t *testing.T) {
	caller := &fakeCaller{respond: func(fn string, params dialer.Params) (string, error) {
		if params.Get("new_user") != nil {
			return "SUCCESS: add_user USER HAS BEEN ADDED", nil
		}
		return "ERROR: add_user INVALID USER ID", nil
	}}
	engine := NewEngine(caller, nil, Config{}, nil)

	res := engine.EnsureUser(context.Background(), userTarget)
	assert.True(t, res.OK)
	assert.Equal(t, "new", res.Dialect)
	assert.Equal(t, 3, caller.count(fnAddUser))
}

func TestEnsureUser_RowStoreFallback(t *testing.T) {
	caller := &fakeCaller{respond: func(string, dialer.Params) (string, error) {
		return "ERROR: add_user USER DOES NOT HAVE PERMISSION", nil
	}}
	repo := newFakeRepo()
	engine := NewEngine(caller, repo, Config{}, nil)

	res := engine.EnsureUser(context.Background(), userTarget)
	require.True(t, res.OK)
	assert.Equal(t, ViaRowStore, res.Via)
	assert.Contains(t, repo.users, "jane_roe")
	assert.Len(t, res.Warnings, 1)

	// 已存在时不重复插入
	repo.users["jane_roe"] = etagent.UserTarget{Username: "jane_roe", FullName: "kept"}
	res = engine.EnsureUser(context.Background(), userTarget)
	require.True(t, res.OK)
	assert.Equal(t, "kept", repo.users["jane_roe"].FullName)
}

func TestEnsureUser_TransportStopsChain(t *testing.T) {
	caller := &fakeCaller{respond: func(string, dialer.Params) (string, error) {
		return "", errorx.Transport("dialer.add_user", errors.New("connection refused"))
	}}
	repo := newFakeRepo()
	engine := NewEngine(caller, repo, Config{}, nil)

	res := engine.EnsureUser(context.Background(), userTarget)
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "connection refused")
	assert.Equal(t, 1, caller.count(fnAddUser))
	assert.Empty(t, repo.users)
}

func TestEnsureUser_AllRejectedWithoutRowStore(t *testing.T) {
	caller := &fakeCaller{respond: func(string, dialer.Params) (string, error) {
		return "ERROR: bad syntax", nil
	}}
	engine := NewEngine(caller, nil, Config{}, nil)

	res := engine.EnsureUser(context.Background(), userTarget)
	assert.False(t, res.OK)
	assert.Equal(t, 5, strings.Count(res.Error, "ERROR: bad syntax"))
	for _, d := range UserDialects {
		assert.Contains(t, res.Error, "["+d.Name+"]")
	}
}

func TestEnsureList(t *testing.T) {
	target := etagent.ListTarget{ListID: "ret01", Name: "Jane retention", CampaignID: "retain"}

	t.Run("api success", func(t *testing.T) {
		caller := &fakeCaller{respond: func(string, dialer.Params) (string, error) {
			return "SUCCESS: add_list LIST HAS BEEN ADDED - ret01", nil
		}}
		res := NewEngine(caller, nil, Config{}, nil).EnsureList(context.Background(), target)
		assert.True(t, res.OK)
		assert.Equal(t, ViaAPI, res.Via)
	})

	t.Run("already exists", func(t *testing.T) {
		caller := &fakeCaller{respond: func(string, dialer.Params) (string, error) {
			return "ERROR: add_list LIST ALREADY EXISTS - ret01", nil
		}}
		res := NewEngine(caller, nil, Config{}, nil).EnsureList(context.Background(), target)
		assert.True(t, res.OK)
		assert.Equal(t, ViaExists, res.Via)
	})

	t.Run("rejected with row store", func(t *testing.T) {
		caller := &fakeCaller{respond: func(string, dialer.Params) (string, error) {
			return "ERROR: add_list USER DOES NOT HAVE PERMISSION", nil
		}}
		repo := newFakeRepo()
		res := NewEngine(caller, repo, Config{}, nil).EnsureList(context.Background(), target)
		assert.True(t, res.OK)
		assert.Equal(t, ViaRowStore, res.Via)
		assert.Equal(t, "retain", repo.lists["ret01"].CampaignID)
		assert.Equal(t, 1, caller.count(fnAddList))
	})

	t.Run("rejected without row store", func(t *testing.T) {
		caller := &fakeCaller{respond: func(string, dialer.Params) (string, error) {
			return "ERROR: add_list USER DOES NOT HAVE PERMISSION", nil
		}}
		res := NewEngine(caller, nil, Config{}, nil).EnsureList(context.Background(), target)
		assert.False(t, res.OK)
		assert.NotEmpty(t, res.Warnings)
		assert.Contains(t, res.Error, "PERMISSION")
	})
}

func TestEnsureCampaign(t *testing.T) {
	target := etagent.CampaignTarget{CampaignID: "retain"}

	res := NewEngine(nil, nil, Config{}, nil).EnsureCampaign(context.Background(), target)
	assert.True(t, res.OK)
	assert.Equal(t, ViaUnverified, res.Via)
	assert.NotEmpty(t, res.Warnings)

	repo := newFakeRepo()
	res = NewEngine(nil, repo, Config{}, nil).EnsureCampaign(context.Background(), target)
	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Warnings)

	repo.campaigns["retain"] = true
	res = NewEngine(nil, repo, Config{}, nil).EnsureCampaign(context.Background(), target)
	assert.True(t, res.OK)
	assert.Equal(t, ViaExists, res.Via)

	repo.err = errors.New("db down")
	res = NewEngine(nil, repo, Config{}, nil).EnsureCampaign(context.Background(), target)
	assert.True(t, res.OK)
	assert.Equal(t, ViaUnverified, res.Via)
}

// fakePlatform 模拟平台：第二个坐席的 add_user 永远返回 bad syntax
func fakePlatform(t *testing.T, badUser string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		switch r.PostForm.Get("function") {
		case fnAddList:
			fmt.Fprintf(w, "SUCCESS: add_list LIST HAS BEEN ADDED - %s\n", r.PostForm.Get("list_id"))
		case fnAddUser:
			user := ""
			for _, key := range []string{"agent_user", "user_id", "new_user", "users_user"} {
				if v := r.PostForm.Get(key); v != "" {
					user = v
					break
				}
			}
			if user == badUser {
				fmt.Fprint(w, "ERROR: bad syntax\n")
				return
			}
			fmt.Fprintf(w, "SUCCESS: add_user USER HAS BEEN ADDED - %s\n", user)
		default:
			fmt.Fprint(w, "ERROR: NO FUNCTION SPECIFIED\n")
		}
	}))
}

func TestRun_ThreeAgentsOneRejected(t *testing.T) {
	srv := fakePlatform(t, "agent_two")
	defer srv.Close()

	client, err := dialer.NewClient(dialer.Config{BaseURL: srv.URL, User: "api", Pass: "secret"}, srv.Client())
	require.NoError(t, err)

	profiles := []*etagent.Profile{
		{ID: "1cda9534-0001", DisplayName: "Agent One", Username: "agent_one"},
		{ID: "1cda9534-0002", DisplayName: "Agent Two", Username: "agent_two"},
		{ID: "1cda9534-0003", DisplayName: "Agent Three", Username: "agent_three"},
	}
	engine := NewEngine(client, nil, Config{
		Mapping: etagent.MappingDefaults{CampaignID: "RETAIN", ListID: "RET01"},
		Targets: etagent.TargetDefaults{Password: "Welcome1", UserLevel: 1, UserGroup: "AGENTS"},
	}, logger.NewNop())

	batch := engine.Run(context.Background(), profiles)

	require.Len(t, batch.Agents, 3)
	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, 1, batch.Failed)
	assert.ErrorIs(t, batch.Err(), errorx.ErrPartialBatchFailure)

	for _, i := range []int{0, 2} {
		a := batch.Agents[i]
		assert.True(t, a.Created.Campaign, a.StatusLine())
		assert.True(t, a.Created.List, a.StatusLine())
		assert.True(t, a.Created.User, a.StatusLine())
		assert.Empty(t, a.Errors)
	}

	second := batch.Agents[1]
	assert.True(t, second.Created.Campaign)
	assert.True(t, second.Created.List)
	assert.False(t, second.Created.User)
	require.Len(t, second.Errors, 1)
	assert.Equal(t, 5, strings.Count(second.Errors[0], "ERROR: bad syntax"))
	assert.Contains(t, second.StatusLine(), "created.user=false")

	// 重跑收敛到相同映射
	again := engine.Run(context.Background(), profiles)
	for i := range profiles {
		assert.Equal(t, batch.Agents[i].Mapping, again.Agents[i].Mapping)
	}
}

func TestRun_InvalidProfileDoesNotAbort(t *testing.T) {
	caller := &fakeCaller{respond: func(fn string, _ dialer.Params) (string, error) {
		return "SUCCESS: " + fn, nil
	}}
	engine := NewEngine(caller, nil, Config{}, nil)

	batch := engine.Run(context.Background(), []*etagent.Profile{{ID: ""}, {ID: "p2", Username: "agent_b"}})
	require.Len(t, batch.Agents, 2)
	assert.Equal(t, 1, batch.Failed)
	assert.True(t, batch.Agents[1].OK())
}

func TestRun_MissingCampaignIsNotAFailure(t *testing.T) {
	caller := &fakeCaller{respond: func(fn string, _ dialer.Params) (string, error) {
		return "SUCCESS: " + fn, nil
	}}
	engine := NewEngine(caller, newFakeRepo(), Config{
		Mapping: etagent.MappingDefaults{CampaignID: "retain", ListID: "101"},
	}, nil)

	batch := engine.Run(context.Background(), []*etagent.Profile{{ID: "p1", Username: "agent_a"}})
	require.Len(t, batch.Agents, 1)
	assert.Equal(t, 0, batch.Failed)
	assert.NoError(t, batch.Err())

	report := batch.Agents[0]
	assert.True(t, report.OK())
	assert.False(t, report.Created.Campaign)
	assert.Contains(t, report.StatusLine(), "created.campaign=false")
	assert.Contains(t, strings.Join(report.Warnings, "\n"), "campaign retain does not exist")
}
