package grainview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

func TestSessionDetailsNeedASession(t *testing.T) {
	f := newFixture(t)
	v := f.view("alice", Target{GrainID: "g1"})

	_, ok := v.Size()
	assert.False(t, ok)
	assert.False(t, v.HasLoaded())
	assert.Equal(t, "", v.Origin())
	assert.Nil(t, v.ViewInfo())
}

func TestSessionDetails(t *testing.T) {
	f := newFixture(t)
	seedNotes(t, f)
	mustPut(t, f.store.PutSession(types.SessionRecord{
		ID:        "s1",
		GrainID:   "g1",
		HostID:    "abc123",
		HasLoaded: true,
		ViewInfo:  map[string]any{"permissions": []any{"edit"}},
	}))
	mustPut(t, f.store.SetGrainSize("s1", 4096))
	f.opener.outcome = types.Opened{GrainID: "g1", SessionID: "s1"}

	v := f.view("alice", Target{GrainID: "g1"})
	require.NoError(t, v.OpenSession(context.Background()))
	require.Eventually(t, func() bool {
		return v.Status() == StatusOpened
	}, waitFor, tick)

	size, ok := v.Size()
	require.True(t, ok)
	assert.Equal(t, uint64(4096), size)
	assert.True(t, v.HasLoaded())
	assert.Equal(t, "http://abc123.local.sandstorm.io:6080", v.Origin())
	assert.Equal(t, []any{"edit"}, v.ViewInfo()["permissions"])
}

func TestRoute(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "/grain/g1", f.view("alice", Target{GrainID: "g1"}).Route())
	assert.Equal(t, "/shared/tok", f.view("", Target{Token: "tok", GrainID: "g1"}).Route())

	tests := []struct {
		route Route
		want  string
	}{
		{Route{Name: RouteGrain, GrainID: "g1"}, "/grain/g1"},
		{Route{Name: RouteGrain, GrainID: "g1", Link: DeepLink{Path: "a/b"}}, "/grain/g1/a/b"},
		{Route{Name: RouteGrain, GrainID: "g1", Link: DeepLink{Query: "?x=1", Hash: "#top"}}, "/grain/g1?x=1#top"},
		{Route{Name: RouteShared, Token: "a/b"}, "/shared/a%2Fb"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.route.URL())
	}
}

func TestSettersNotify(t *testing.T) {
	f := newFixture(t)
	v := f.view("alice", Target{GrainID: "g1"})

	notified := 0
	cancel := v.Changes().Subscribe(func() { notified++ })

	v.SetActive(true)
	assert.True(t, v.IsActive())
	v.SetGeneratedAPIToken("api-1")
	assert.Equal(t, "api-1", v.GeneratedAPIToken())
	v.SetRevealIdentity(true)
	v.SetFrameTitle("x")
	v.ClearFrameTitle()
	assert.Equal(t, 5, notified)

	cancel()
	v.SetActive(false)
	assert.Equal(t, 5, notified)
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t)
	seedNotes(t, f)
	link := DeepLink{Path: "/list"}

	v := f.view("alice", Target{GrainID: "g1", Link: link})
	v.SetActive(true)
	snap := v.Snapshot()

	assert.Equal(t, v.ID().String(), snap.ID)
	assert.Equal(t, "g1", snap.GrainID)
	assert.Equal(t, "/grain/g1", snap.Route)
	assert.Equal(t, StatusClosed, snap.Status)
	assert.Equal(t, "owner", snap.Mode)
	assert.Equal(t, "Groceries", snap.Title)
	assert.Equal(t, "Notes", snap.AppTitle)
	assert.Equal(t, "Notes · Groceries · Sandstorm", snap.FrameTitle)
	assert.Equal(t, testHosts.AssetURL("notes-24"), snap.IconSrc)
	assert.True(t, snap.Active)
	assert.False(t, snap.ShowInterstitial, "owned-grain views never need the interstitial")
	assert.Nil(t, snap.RevealIdentity)
	assert.Equal(t, link, snap.Link)
}
