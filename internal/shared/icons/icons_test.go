package icons

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHosts = Hosts{Protocol: "https:", Wildcard: "*.sandcats.example:443"}

func TestHosts(t *testing.T) {
	assert.Equal(t, "abc.sandcats.example:443", testHosts.Host("abc"))
	assert.Equal(t, "https://abc.sandcats.example:443", testHosts.Origin("abc"))
	assert.Equal(t, "https://static.sandcats.example:443/asset1", testHosts.AssetURL("asset1"))
	assert.Equal(t, "http://static.x/a", Hosts{Wildcard: "*.x"}.AssetURL("a"))
}

func TestIdenticonDeterministic(t *testing.T) {
	a := Identicon("app-1", UsageGrain)
	b := Identicon("app-1", UsageGrain)
	c := Identicon("app-2", UsageGrain)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	require.True(t, strings.HasPrefix(a, "data:image/svg+xml;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(a, "data:image/svg+xml;base64,"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `width="24"`)
}

func TestIdenticonSizeByUsage(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(Identicon("x", UsageAppGrid), "data:image/svg+xml;base64,"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `width="128"`)
}

func TestFallback(t *testing.T) {
	assert.Equal(t, Identicon("da39a3ee5e6b4b0d3255bfef95601890afd80709", UsageGrain), Fallback(UsageGrain))
}

func TestForPackage(t *testing.T) {
	tests := []struct {
		name string
		pkg  *types.Package
		want string
	}{
		{
			name: "grain icon asset",
			pkg: &types.Package{AppID: "a", Manifest: &types.Manifest{Icons: types.Icons{
				Grain:   &types.Icon{AssetID: "g"},
				AppGrid: &types.Icon{AssetID: "grid"},
			}}},
			want: testHosts.AssetURL("g"),
		},
		{
			name: "app grid fallback",
			pkg: &types.Package{AppID: "a", Manifest: &types.Manifest{Icons: types.Icons{
				AppGrid: &types.Icon{AssetID: "grid"},
			}}},
			want: testHosts.AssetURL("grid"),
		},
		{
			name: "identicon",
			pkg:  &types.Package{AppID: "a"},
			want: Identicon("a", UsageGrain),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, testHosts.ForPackage(tt.pkg, UsageGrain))
		})
	}
}
