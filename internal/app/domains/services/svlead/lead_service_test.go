package svlead

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retention/dialersync/internal/app/domains/entity/etassignment"
	"retention/dialersync/internal/app/domains/entity/etlead"
	"retention/dialersync/internal/app/domains/modules/mdlead"
	"retention/dialersync/internal/app/domains/repo/rpassignment"
	"retention/dialersync/internal/app/infra/dialer"
	"retention/dialersync/internal/app/infra/leadindex"
	"retention/dialersync/internal/app/pkg/errorx"
	"retention/dialersync/internal/app/pkg/lmstfyx"
	"retention/dialersync/internal/app/pkg/logger"
)

type fakeCaller struct {
	mu     sync.Mutex
	params map[string][]dialer.Params
	bodies map[string]string
}

func (f *fakeCaller) Call(_ context.Context, function string, params dialer.Params) (*dialer.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.params == nil {
		f.params = map[string][]dialer.Params{}
	}
	f.params[function] = append(f.params[function], params)
	body, ok := f.bodies[function]
	if !ok {
		body = "ERROR: NO FUNCTION SPECIFIED"
	}
	return &dialer.Result{HTTPStatus: 200, RawBody: body}, nil
}

type fakeAssignments struct {
	records map[string]*etassignment.Assignment
	err     error
}

func (f *fakeAssignments) GetByID(_ context.Context, id string) (*etassignment.Assignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

type fakePublisher struct {
	queue string
	jobs  []*lmstfyx.Job
	err   error
}

func (p *fakePublisher) Publish(_ context.Context, queue string, job *lmstfyx.Job) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.queue = queue
	p.jobs = append(p.jobs, job)
	return "job-1", nil
}

func newService(t *testing.T, caller *fakeCaller, repo *fakeAssignments, pub JobPublisher) *LeadService {
	t.Helper()
	idx := leadindex.NewFileStore(filepath.Join(t.TempDir(), "lead-index.json"), logger.NewNop())
	syncer := mdlead.NewSynchronizer(caller, idx, nil, mdlead.Config{ListID: "101", PhoneCode: "1"}, logger.NewNop())

	var assignments rpassignment.AssignmentRepository
	if repo != nil {
		assignments = repo
	}
	return NewLeadService(syncer, assignments, pub, "assignment_events", logger.NewNop())
}

func TestAddLead_LoadsAssignmentFromRowStore(t *testing.T) {
	caller := &fakeCaller{bodies: map[string]string{
		"add_lead": "SUCCESS: add_lead LEAD HAS BEEN ADDED - 5551234567|101|4821|-5|api",
	}}
	repo := &fakeAssignments{records: map[string]*etassignment.Assignment{
		"as-1": {ID: "as-1", DealID: "D-9", AgentProfileID: "ag-1", PhoneNumber: "(555) 123-4567", CustomerName: "Jane Roe"},
	}}
	svc := newService(t, caller, repo, nil)

	res, err := svc.AddLead(context.Background(), AddLeadCommand{AssignmentID: "as-1", ListID: "202"})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, int64(4821), res.LeadID)

	sent := caller.params["add_lead"][0]
	assert.Equal(t, "5551234567", sent.Get("phone_number"))
	assert.Equal(t, "202", sent.Get("list_id"))
	assert.Equal(t, "D-9", sent.Get("vendor_lead_code"))

	entries, err := svc.ListIndex(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "as-1", entries[0].AssignmentID)
}

func TestAddLead_UnknownAssignment(t *testing.T) {
	svc := newService(t, &fakeCaller{}, &fakeAssignments{}, nil)

	_, err := svc.AddLead(context.Background(), AddLeadCommand{AssignmentID: "missing"})
	assert.True(t, errors.Is(err, errorx.ErrNotFound))
}

func TestAddLead_WithoutRowStoreRequiresPhone(t *testing.T) {
	svc := newService(t, &fakeCaller{}, nil, nil)

	_, err := svc.AddLead(context.Background(), AddLeadCommand{AssignmentID: "as-1"})
	assert.True(t, errors.Is(err, errorx.ErrInvalidInput))
}

func TestUnassignLead_EnrichesIdentifiersForSearch(t *testing.T) {
	caller := &fakeCaller{bodies: map[string]string{
		"lead_all_info": "status|vendor_lead_code|lead_id\nNEW|D-2|77",
		"lead_search":   "ERROR: lead_search NO MATCHES FOUND IN THE SYSTEM",
		"update_lead":   "SUCCESS: update_lead LEAD HAS BEEN UPDATED - 77",
	}}
	repo := &fakeAssignments{records: map[string]*etassignment.Assignment{
		"as-2": {ID: "as-2", DealID: "D-2", PhoneNumber: "5550000002"},
	}}
	svc := newService(t, caller, repo, nil)

	res, err := svc.UnassignLead(context.Background(), etlead.Identifiers{AssignmentID: "as-2"})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, mdlead.SourceSearch, res.Source)
	assert.Equal(t, []int64{77}, res.LeadIDs)
	assert.Equal(t, "D-2", caller.params["lead_all_info"][0].Get("vendor_lead_code"))
}

func TestUnassignLead_RowStoreFailureIsNotFatal(t *testing.T) {
	svc := newService(t, &fakeCaller{}, &fakeAssignments{err: errors.New("db down")}, nil)

	res, err := svc.UnassignLead(context.Background(), etlead.Identifiers{AssignmentID: "as-3"})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, mdlead.SourceNone, res.Source)
}

func TestEnqueue(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(t, &fakeCaller{}, nil, pub)
	ctx := logger.WithTraceID(context.Background(), "req-1")

	jobID, err := svc.EnqueueAdd(ctx, AddLeadCommand{AssignmentID: "as-1", PhoneNumber: "5551234567"})
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, "assignment_events", pub.queue)

	meta := pub.jobs[0].Meta()
	assert.Equal(t, ActionLeadAdd, meta.ActionType)
	assert.Equal(t, "req-1", meta.RequestID)
	assert.Equal(t, "as-1", meta.ID)

	var cmd AddLeadCommand
	require.NoError(t, pub.jobs[0].Decode(&cmd))
	assert.Equal(t, "5551234567", cmd.PhoneNumber)

	_, err = svc.EnqueueUnassign(ctx, etlead.Identifiers{DealID: "D-1", PhoneNumber: "5551234567"})
	require.NoError(t, err)
	assert.Equal(t, ActionLeadUnassign, pub.jobs[1].Meta().ActionType)
}

func TestEnqueue_Errors(t *testing.T) {
	svc := newService(t, &fakeCaller{}, nil, nil)
	_, err := svc.EnqueueAdd(context.Background(), AddLeadCommand{AssignmentID: "as-1"})
	assert.True(t, errors.Is(err, errorx.ErrConfigurationMissing))

	svc = newService(t, &fakeCaller{}, nil, &fakePublisher{err: errors.New("refused")})
	_, err = svc.EnqueueAdd(context.Background(), AddLeadCommand{AssignmentID: "as-1"})
	assert.True(t, errors.Is(err, errorx.ErrTransport))

	_, err = svc.EnqueueAdd(context.Background(), AddLeadCommand{})
	assert.True(t, errors.Is(err, errorx.ErrInvalidInput))

	_, err = svc.EnqueueUnassign(context.Background(), etlead.Identifiers{})
	assert.True(t, errors.Is(err, errorx.ErrInvalidInput))
}
