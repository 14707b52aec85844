package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/shell/internal/store"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestOwnedGrain(t *testing.T) {
	s := New()
	require.NoError(t, s.PutGrain(types.Grain{ID: "g1", UserID: "alice", Title: "Notes"}))

	grain, ok := s.OwnedGrain("g1", "alice")
	require.True(t, ok)
	assert.Equal(t, "Notes", grain.Title)

	_, ok = s.OwnedGrain("g1", "bob")
	assert.False(t, ok)

	_, ok = s.Grain("g1")
	assert.True(t, ok)

	grain.Title = "changed"
	again, _ := s.Grain("g1")
	assert.Equal(t, "Notes", again.Title)
}

func TestEarliestToken(t *testing.T) {
	s := New()
	owner := func(title string) *types.TokenOwner {
		return &types.TokenOwner{UserID: "bob", Title: title}
	}
	require.NoError(t, s.PutToken(types.APIToken{ID: "t-late", GrainID: "g1", UserID: "alice", Owner: owner("late"), CreatedAt: t0.Add(time.Hour)}))
	require.NoError(t, s.PutToken(types.APIToken{ID: "t-early", GrainID: "g1", UserID: "alice", Owner: owner("early"), CreatedAt: t0}))
	require.NoError(t, s.PutToken(types.APIToken{ID: "t-object", GrainID: "g1", UserID: "alice", ObjectID: "doc", Owner: owner("object"), CreatedAt: t0.Add(-time.Hour)}))
	require.NoError(t, s.PutToken(types.APIToken{ID: "t-other", GrainID: "g2", UserID: "alice", Owner: owner("other"), CreatedAt: t0.Add(-2 * time.Hour)}))

	token, ok := s.EarliestToken("g1", "bob")
	require.True(t, ok)
	assert.Equal(t, "t-early", token.ID)
	assert.Equal(t, "early", token.Owner.Title)

	_, ok = s.EarliestToken("g1", "carol")
	assert.False(t, ok)
}

func TestHasTokenFrom(t *testing.T) {
	s := New()
	require.NoError(t, s.PutToken(types.APIToken{ID: "t1", GrainID: "g9", UserID: "alice", Owner: &types.TokenOwner{UserID: "bob"}}))

	assert.True(t, s.HasTokenFrom("alice", "bob"))
	assert.False(t, s.HasTokenFrom("bob", "alice"))
	assert.False(t, s.HasTokenFrom("alice", "carol"))
}

func TestTitleWrites(t *testing.T) {
	s := New()
	require.NoError(t, s.PutGrain(types.Grain{ID: "g1", UserID: "alice", Title: "Old"}))
	require.NoError(t, s.PutToken(types.APIToken{ID: "t1", GrainID: "g1", Owner: &types.TokenOwner{UserID: "bob", Title: "Old"}}))
	require.NoError(t, s.PutToken(types.APIToken{ID: "t2", GrainID: "g1"}))

	require.NoError(t, s.SetGrainTitle("g1", "New"))
	grain, _ := s.Grain("g1")
	assert.Equal(t, "New", grain.Title)

	require.NoError(t, s.SetTokenTitle("t1", "Mine"))
	token, _ := s.EarliestToken("g1", "bob")
	assert.Equal(t, "Mine", token.Owner.Title)

	assert.ErrorIs(t, s.SetGrainTitle("missing", "x"), store.ErrNotFound)
	assert.ErrorIs(t, s.SetTokenTitle("missing", "x"), store.ErrNotFound)
	assert.ErrorIs(t, s.SetTokenTitle("t2", "x"), store.ErrNotFound)
}

func TestTokenInfoAndPackage(t *testing.T) {
	s := New()
	require.NoError(t, s.PutTokenInfo(types.TokenInfo{
		Token:         "tok",
		APIToken:      &types.TokenIssuer{ID: "t1", UserID: "alice"},
		GrainMetadata: &types.GrainMetadata{AppTitle: "Etherpad"},
	}))
	require.NoError(t, s.PutPackage(types.Package{ID: "pkg", AppID: "app", Manifest: &types.Manifest{AppTitle: "Etherpad"}}))

	info, ok := s.TokenInfo("tok")
	require.True(t, ok)
	assert.Equal(t, "alice", info.APIToken.UserID)

	_, ok = s.TokenInfo("")
	assert.False(t, ok)

	pkg, ok := s.Package("pkg")
	require.True(t, ok)
	assert.Equal(t, "Etherpad", pkg.Manifest.AppTitle)
}

func TestSessionsAndSizes(t *testing.T) {
	s := New()
	require.NoError(t, s.PutSession(types.SessionRecord{ID: "s1", GrainID: "g1", HostID: "abc", ViewInfo: map[string]any{"roles": []any{"editor"}}}))
	require.NoError(t, s.SetGrainSize("s1", 4096))

	session, ok := s.Session("s1")
	require.True(t, ok)
	assert.Equal(t, "abc", session.HostID)
	session.ViewInfo["extra"] = true

	again, _ := s.Session("s1")
	assert.NotContains(t, again.ViewInfo, "extra")

	size, ok := s.GrainSize("s1")
	require.True(t, ok)
	assert.Equal(t, uint64(4096), size)

	assert.True(t, s.RemoveSession("s1"))
	assert.False(t, s.RemoveSession("s1"))
	_, ok = s.GrainSize("s1")
	assert.False(t, ok)
}

type recorder struct {
	mu     sync.Mutex
	events []types.SessionEvent
}

func (r *recorder) handle(ev types.SessionEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) kinds() []types.SessionEventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]types.SessionEventKind, 0, len(r.events))
	for _, ev := range r.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

func TestSubscribe(t *testing.T) {
	s := New()
	var rec, other recorder

	stop, err := s.Subscribe(context.Background(), "s1", rec.handle)
	require.NoError(t, err)
	_, err = s.Subscribe(context.Background(), "s2", other.handle)
	require.NoError(t, err)

	require.NoError(t, s.PutSession(types.SessionRecord{ID: "s1"}))
	s.RemoveSession("s1")

	assert.Equal(t, []types.SessionEventKind{types.SessionAdded, types.SessionRemoved}, rec.kinds())
	assert.Empty(t, other.kinds())

	stop()
	stop()
	require.NoError(t, s.PutSession(types.SessionRecord{ID: "s1"}))
	assert.Len(t, rec.kinds(), 2)
	assert.Equal(t, 1, s.Subscribers())
}

func TestSubscribeExistingSession(t *testing.T) {
	s := New()
	require.NoError(t, s.PutSession(types.SessionRecord{ID: "s1"}))

	var rec recorder
	_, err := s.Subscribe(context.Background(), "s1", rec.handle)
	require.NoError(t, err)

	assert.Equal(t, []types.SessionEventKind{types.SessionAdded}, rec.kinds())
}

func TestSubscribeStopsWithContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())

	_, err := s.Subscribe(ctx, "s1", func(types.SessionEvent) {})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Subscribers())

	cancel()
	assert.Eventually(t, func() bool { return s.Subscribers() == 0 }, time.Second, 5*time.Millisecond)

	_, err = s.Subscribe(ctx, "s1", func(types.SessionEvent) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandlerMayCallBackIntoStore(t *testing.T) {
	s := New()
	done := make(chan struct{})

	_, err := s.Subscribe(context.Background(), "s1", func(ev types.SessionEvent) {
		if ev.Kind == types.SessionRemoved {
			_, _ = s.Session("s1")
			_ = s.Subscribers()
			close(done)
		}
	})
	require.NoError(t, err)

	require.NoError(t, s.PutSession(types.SessionRecord{ID: "s1"}))
	s.RemoveSession("s1")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler deadlocked")
	}
}
