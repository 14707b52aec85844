package seed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/shell/internal/store/memory"
)

const fixture = `
packages:
  - id: pkg-etherpad
    app_id: etherpad
    manifest:
      app_title: Etherpad
      icons:
        grain: {asset_id: icon-24}
grains:
  - id: g1
    user_id: alice
    package_id: pkg-etherpad
    app_id: etherpad
    title: Groceries
tokens:
  - id: t1
    grain_id: g1
    user_id: alice
    owner:
      user_id: bob
      title: Alice's list
      metadata: {app_title: Etherpad, app_id: etherpad}
    created_at: 2024-03-01T12:00:00Z
token_info:
  - token: secret
    api_token: {id: t1, user_id: alice}
    grain_metadata: {app_title: Etherpad}
sessions:
  - id: s1
    grain_id: g1
    host_id: h0st
    has_loaded: true
grain_sizes:
  s1: 2048
`

func TestLoad(t *testing.T) {
	s := memory.New()

	parsed, err := Parse([]byte(fixture))
	require.NoError(t, err)

	stats, err := Load(parsed, s)
	require.NoError(t, err)
	assert.Equal(t, Stats{Packages: 1, Grains: 1, Tokens: 1, TokenInfo: 1, Sessions: 1}, stats)

	grain, ok := s.OwnedGrain("g1", "alice")
	require.True(t, ok)
	assert.Equal(t, "Groceries", grain.Title)

	pkg, ok := s.Package("pkg-etherpad")
	require.True(t, ok)
	assert.Equal(t, "icon-24", pkg.Manifest.Icons.Grain.AssetID)

	token, ok := s.EarliestToken("g1", "bob")
	require.True(t, ok)
	assert.Equal(t, "Alice's list", token.Owner.Title)
	assert.Equal(t, "Etherpad", token.Owner.Metadata.AppTitle)
	assert.True(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Equal(token.CreatedAt))

	info, ok := s.TokenInfo("secret")
	require.True(t, ok)
	assert.Equal(t, "alice", info.APIToken.UserID)

	session, ok := s.Session("s1")
	require.True(t, ok)
	assert.True(t, session.HasLoaded)

	size, ok := s.GrainSize("s1")
	require.True(t, ok)
	assert.Equal(t, uint64(2048), size)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))

	stats, err := LoadFile(path, memory.New())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Grains)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), memory.New())
	assert.Error(t, err)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "grains:\n  - id: g1\n    user_id: alice\n    colour: red\n"},
		{"grain without owner", "grains:\n  - id: g1\n"},
		{"token without grain", "tokens:\n  - id: t1\n"},
		{"token info without token", "token_info:\n  - grain_metadata: {app_title: x}\n"},
		{"session without id", "sessions:\n  - grain_id: g1\n"},
		{"not yaml", "grains: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

type failingSink struct {
	*memory.Store
}

func (failingSink) PutToken(types.APIToken) error {
	return errors.New("disk full")
}

func TestLoadStopsAtFirstFailure(t *testing.T) {
	parsed, err := Parse([]byte(fixture))
	require.NoError(t, err)

	stats, err := Load(parsed, failingSink{memory.New()})

	assert.ErrorContains(t, err, "token t1")
	assert.Equal(t, 1, stats.Grains)
	assert.Equal(t, 0, stats.Tokens)
	assert.Equal(t, 0, stats.Sessions)
}

func TestLoadGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "teams", "notes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(fixture), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "teams", "notes", "extra.yaml"),
		[]byte("grains:\n  - id: g2\n    user_id: carol\n    title: Recipes\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a fixture"), 0o600))

	s := memory.New()
	stats, err := LoadGlob(filepath.Join(dir, "**", "*.yaml"), s)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Grains)
	assert.Equal(t, 1, stats.Tokens)

	grain, ok := s.OwnedGrain("g2", "carol")
	require.True(t, ok)
	assert.Equal(t, "Recipes", grain.Title)

	_, err = LoadGlob(filepath.Join(dir, "**", "*.toml"), memory.New())
	assert.ErrorContains(t, err, "no fixture matches")
}

func TestDevFixture(t *testing.T) {
	s := memory.New()

	stats, err := LoadGlob(filepath.Join("..", "..", "..", "fixtures", "*.yaml"), s)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Grains)
	_, ok := s.TokenInfo("pad-link")
	assert.True(t, ok)
}
