package svagent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retention/dialersync/internal/app/infra/dialer"
	"retention/dialersync/internal/app/pkg/errorx"
)

type recorded struct {
	agent    bool
	function string
	params   dialer.Params
}

type fakeCaller struct {
	calls []recorded
}

func (f *fakeCaller) Call(_ context.Context, function string, params dialer.Params) (*dialer.Result, error) {
	f.calls = append(f.calls, recorded{false, function, params})
	return &dialer.Result{HTTPStatus: 200, RawBody: "SUCCESS"}, nil
}

func (f *fakeCaller) CallAgent(_ context.Context, function string, params dialer.Params) (*dialer.Result, error) {
	f.calls = append(f.calls, recorded{true, function, params})
	return &dialer.Result{HTTPStatus: 200, RawBody: "SUCCESS"}, nil
}

func TestDial(t *testing.T) {
	caller := &fakeCaller{}
	svc := NewAgentService(caller, "", nil)

	_, err := svc.Dial(context.Background(), "ann", "+1 (555) 123-4567", "")
	require.NoError(t, err)

	require.Len(t, caller.calls, 1)
	c := caller.calls[0]
	assert.True(t, c.agent)
	assert.Equal(t, "external_dial", c.function)
	assert.Equal(t, "5551234567", c.params.Get("value"))
	assert.Equal(t, "1", c.params.Get("phone_code"))
	assert.Equal(t, "YES", c.params.Get("search"))
	assert.Equal(t, "NO", c.params.Get("preview"))
}

func TestPause(t *testing.T) {
	caller := &fakeCaller{}
	svc := NewAgentService(caller, "1", nil)

	_, err := svc.Pause(context.Background(), "ann", "resume")
	require.NoError(t, err)
	assert.Equal(t, "RESUME", caller.calls[0].params.Get("value"))

	_, err = svc.Pause(context.Background(), "ann", "stop")
	assert.True(t, errors.Is(err, errorx.ErrInvalidInput))
}

func TestSearchLeads(t *testing.T) {
	caller := &fakeCaller{}
	svc := NewAgentService(caller, "1", nil)

	_, err := svc.SearchLeads(context.Background(), "5551234567", "D-1")
	require.NoError(t, err)
	assert.Equal(t, "lead_all_info", caller.calls[0].function)

	_, err = svc.SearchLeads(context.Background(), "555-123-4567", "")
	require.NoError(t, err)
	assert.Equal(t, "lead_search", caller.calls[1].function)
	assert.False(t, caller.calls[1].agent)

	_, err = svc.SearchLeads(context.Background(), "", "")
	assert.True(t, errors.Is(err, errorx.ErrInvalidInput))
}

func TestRequiredFields(t *testing.T) {
	svc := NewAgentService(&fakeCaller{}, "1", nil)

	_, err := svc.SetStatus(context.Background(), "", "SALE")
	assert.True(t, errors.Is(err, errorx.ErrInvalidInput))
	_, err = svc.HopperList(context.Background(), "")
	assert.True(t, errors.Is(err, errorx.ErrInvalidInput))
	_, err = svc.Dial(context.Background(), "ann", "", "")
	assert.True(t, errors.Is(err, errorx.ErrInvalidInput))
}
