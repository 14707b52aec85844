package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/shell/internal/store"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "shell.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shell.db")

	s, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	require.NoError(t, s.PutGrain(types.Grain{ID: "g1", UserID: "alice", Title: "Notes", CreatedAt: t0}))
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), path, nil)
	require.NoError(t, err)
	defer s.Close()

	grain, ok := s.Grain("g1")
	require.True(t, ok)
	assert.Equal(t, "Notes", grain.Title)
	assert.True(t, t0.Equal(grain.CreatedAt))
}

func TestGrains(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.PutGrain(types.Grain{ID: "g1", UserID: "alice", PackageID: "pkg", Title: "Old"}))

	_, ok := s.OwnedGrain("g1", "alice")
	assert.True(t, ok)
	_, ok = s.OwnedGrain("g1", "bob")
	assert.False(t, ok)
	_, ok = s.Grain("missing")
	assert.False(t, ok)

	require.NoError(t, s.SetGrainTitle("g1", "New"))
	grain, _ := s.Grain("g1")
	assert.Equal(t, "New", grain.Title)

	assert.ErrorIs(t, s.SetGrainTitle("missing", "x"), store.ErrNotFound)
}

func TestTokens(t *testing.T) {
	s := openTestStore(t)
	meta := &types.GrainMetadata{AppTitle: "Etherpad", Icon: &types.Icon{AssetID: "a1"}}
	owner := func(title string) *types.TokenOwner {
		return &types.TokenOwner{UserID: "bob", Title: title, Metadata: meta}
	}
	require.NoError(t, s.PutToken(types.APIToken{ID: "t-late", GrainID: "g1", UserID: "alice", Owner: owner("late"), CreatedAt: t0.Add(time.Hour)}))
	require.NoError(t, s.PutToken(types.APIToken{ID: "t-early", GrainID: "g1", UserID: "alice", Owner: owner("early"), CreatedAt: t0}))
	require.NoError(t, s.PutToken(types.APIToken{ID: "t-object", GrainID: "g1", UserID: "alice", ObjectID: "doc", Owner: owner("object"), CreatedAt: t0.Add(-time.Hour)}))
	require.NoError(t, s.PutToken(types.APIToken{ID: "t-unowned", GrainID: "g1", UserID: "alice", CreatedAt: t0.Add(-time.Hour)}))

	token, ok := s.EarliestToken("g1", "bob")
	require.True(t, ok)
	assert.Equal(t, "t-early", token.ID)
	require.NotNil(t, token.Owner)
	assert.Equal(t, "early", token.Owner.Title)
	assert.Equal(t, "Etherpad", token.Owner.Metadata.AppTitle)

	assert.True(t, s.HasTokenFrom("alice", "bob"))
	assert.False(t, s.HasTokenFrom("alice", "carol"))
	assert.False(t, s.HasTokenFrom("alice", ""))

	require.NoError(t, s.SetTokenTitle("t-early", "Shared notes"))
	token, _ = s.EarliestToken("g1", "bob")
	assert.Equal(t, "Shared notes", token.Owner.Title)
	assert.Equal(t, "a1", token.Owner.Metadata.Icon.AssetID)

	assert.ErrorIs(t, s.SetTokenTitle("t-unowned", "x"), store.ErrNotFound)
	assert.ErrorIs(t, s.SetTokenTitle("missing", "x"), store.ErrNotFound)
}

func TestTokenInfoPackagesSessions(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutTokenInfo(types.TokenInfo{
		Token:         "tok",
		APIToken:      &types.TokenIssuer{ID: "t1", UserID: "alice"},
		GrainMetadata: &types.GrainMetadata{AppID: "app1"},
	}))
	info, ok := s.TokenInfo("tok")
	require.True(t, ok)
	assert.Equal(t, "alice", info.APIToken.UserID)
	assert.Equal(t, "app1", info.GrainMetadata.AppID)

	require.NoError(t, s.PutPackage(types.Package{ID: "pkg", AppID: "app1", Manifest: &types.Manifest{AppTitle: "Etherpad"}}))
	require.NoError(t, s.PutPackage(types.Package{ID: "bare", AppID: "app2"}))
	pkg, ok := s.Package("pkg")
	require.True(t, ok)
	assert.Equal(t, "Etherpad", pkg.Manifest.AppTitle)
	pkg, ok = s.Package("bare")
	require.True(t, ok)
	assert.Nil(t, pkg.Manifest)

	require.NoError(t, s.PutSession(types.SessionRecord{ID: "s1", GrainID: "g1", HostID: "h1", HasLoaded: true, ViewInfo: map[string]any{"permissions": "read"}}))
	require.NoError(t, s.SetGrainSize("s1", 1<<20))

	session, ok := s.Session("s1")
	require.True(t, ok)
	assert.True(t, session.HasLoaded)
	assert.Equal(t, "read", session.ViewInfo["permissions"])

	size, ok := s.GrainSize("s1")
	require.True(t, ok)
	assert.Equal(t, uint64(1<<20), size)

	assert.True(t, s.RemoveSession("s1"))
	assert.False(t, s.RemoveSession("s1"))
	_, ok = s.Session("s1")
	assert.False(t, ok)
	_, ok = s.GrainSize("s1")
	assert.False(t, ok)
}

func TestReadsDegradeAfterClose(t *testing.T) {
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "shell.db"), nil)
	require.NoError(t, err)
	require.NoError(t, s.PutGrain(types.Grain{ID: "g1", UserID: "alice"}))
	require.NoError(t, s.Close())

	_, ok := s.Grain("g1")
	assert.False(t, ok)
	assert.False(t, s.HasTokenFrom("alice", "bob"))
}
