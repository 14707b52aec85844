package grainview

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/shell/internal/store/memory"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

// fakeOpener answers open calls with a fixed outcome. With a gate set,
// calls block until the gate is closed.
type fakeOpener struct {
	outcome types.OpenOutcome
	err     error
	gate    chan struct{}

	mu         sync.Mutex
	grainCalls []string
	tokenCalls []types.TokenRequest
	ctxErrs    []error
}

func (o *fakeOpener) OpenGrain(ctx context.Context, grainID string) (types.OpenOutcome, error) {
	o.mu.Lock()
	o.grainCalls = append(o.grainCalls, grainID)
	o.ctxErrs = append(o.ctxErrs, ctx.Err())
	o.mu.Unlock()
	return o.wait()
}

func (o *fakeOpener) OpenToken(ctx context.Context, req types.TokenRequest) (types.OpenOutcome, error) {
	o.mu.Lock()
	o.tokenCalls = append(o.tokenCalls, req)
	o.ctxErrs = append(o.ctxErrs, ctx.Err())
	o.mu.Unlock()
	return o.wait()
}

func (o *fakeOpener) wait() (types.OpenOutcome, error) {
	if o.gate != nil {
		<-o.gate
	}
	return o.outcome, o.err
}

func (o *fakeOpener) calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.grainCalls) + len(o.tokenCalls)
}

func (o *fakeOpener) lastTokenCall() (types.TokenRequest, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.tokenCalls) == 0 {
		return types.TokenRequest{}, false
	}
	return o.tokenCalls[len(o.tokenCalls)-1], true
}

type mockNavigator struct {
	mock.Mock
}

func (m *mockNavigator) Go(route Route) {
	m.Called(route)
}

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) Remove(viewID id.ViewID) bool {
	args := m.Called(viewID)
	return args.Bool(0)
}

// statusRecorder collects the status seen by every change notification
type statusRecorder struct {
	mu       sync.Mutex
	statuses []Status
}

func (r *statusRecorder) attach(v *View) {
	v.Subscribe(func() {
		status := v.Status()
		r.mu.Lock()
		r.statuses = append(r.statuses, status)
		r.mu.Unlock()
	})
}

func (r *statusRecorder) seen() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.statuses...)
}

type fixture struct {
	store   *memory.Store
	opener  *fakeOpener
	metrics *monitoring.Metrics
	logger  *zap.Logger
	feed    SessionFeed
	nav     Navigator
	reg     Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	return &fixture{
		store:   store,
		opener:  &fakeOpener{},
		metrics: monitoring.NewMetrics(),
		logger:  zap.NewNop(),
		feed:    store,
	}
}

func (f *fixture) view(userID string, target Target) *View {
	return New(Deps{
		Store:     f.store,
		Opener:    f.opener,
		Feed:      f.feed,
		Navigator: f.nav,
		Registry:  f.reg,
		Identity:  Viewer(userID),
		Logger:    f.logger,
		Metrics:   f.metrics,
	}, target)
}

func mustPut(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
}

// seedNotes stores a package "Notes" and grain g1 "Groceries" owned by alice
func seedNotes(t *testing.T, f *fixture) {
	t.Helper()
	mustPut(t, f.store.PutPackage(types.Package{
		ID:    "pkg-notes",
		AppID: "notes",
		Manifest: &types.Manifest{
			AppTitle: "Notes",
			Icons:    types.Icons{Grain: &types.Icon{AssetID: "notes-24"}},
		},
	}))
	mustPut(t, f.store.PutGrain(types.Grain{
		ID:        "g1",
		UserID:    "alice",
		PackageID: "pkg-notes",
		AppID:     "notes",
		Title:     "Groceries",
	}))
}
