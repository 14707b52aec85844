// Package icons builds icon URLs for grains: static asset URLs on the
// wildcard static host and generated identicons keyed by an app id.
package icons

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/utils"
)

// Usage selects the rendered size of an identicon
type Usage string

const (
	UsageGrain        Usage = "grain"
	UsageAppGrid      Usage = "appGrid"
	UsageNotification Usage = "notification"
)

func (u Usage) size() int {
	switch u {
	case UsageAppGrid:
		return 128
	case UsageNotification:
		return 48
	default:
		return 24
	}
}

// Hosts derives per-host origins from a wildcard host pattern such as
// "*.local.sandstorm.io:6080"
type Hosts struct {
	Protocol string
	Wildcard string
}

// Host substitutes hostID for the wildcard
func (h Hosts) Host(hostID string) string {
	return strings.Replace(h.Wildcard, "*", hostID, 1)
}

// Origin returns protocol + "//" + host for hostID
func (h Hosts) Origin(hostID string) string {
	protocol := h.Protocol
	if protocol == "" {
		protocol = "http:"
	}
	return protocol + "//" + h.Host(hostID)
}

// AssetURL returns the URL of a static asset
func (h Hosts) AssetURL(assetID string) string {
	return h.Origin("static") + "/" + assetID
}

// ForPackage returns the icon of a package for the given usage: the declared
// asset if there is one, else an identicon of the app id
func (h Hosts) ForPackage(pkg *types.Package, usage Usage) string {
	if pkg.Manifest != nil {
		icons := pkg.Manifest.Icons
		if usage == UsageGrain && icons.Grain != nil && icons.Grain.AssetID != "" {
			return h.AssetURL(icons.Grain.AssetID)
		}
		if icons.AppGrid != nil && icons.AppGrid.AssetID != "" {
			return h.AssetURL(icons.AppGrid.AssetID)
		}
	}
	return Identicon(pkg.AppID, usage)
}

// Fallback is the identicon shown when no other icon source is available
func Fallback(usage Usage) string {
	return Identicon(utils.EmptyContentHash(), usage)
}

var hasher = utils.DefaultHasher()

// Identicon renders a deterministic 5x5 mirrored SVG identicon as a data URL
func Identicon(appID string, usage Usage) string {
	digest, _ := hex.DecodeString(hasher.HashString(appID))
	size := usage.size()
	cell := float64(size) / 6
	margin := cell / 2

	fill := fmt.Sprintf("#%02x%02x%02x", digest[0]&0x7f+0x40, digest[1]&0x7f+0x40, digest[2]&0x7f+0x40)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, size, size, size, size)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="#f0f0f0"/>`, size, size)
	for row := 0; row < 5; row++ {
		for col := 0; col < 3; col++ {
			bit := digest[3+row*3+col] & 1
			if bit == 0 {
				continue
			}
			for _, c := range mirror(col) {
				fmt.Fprintf(&sb, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`,
					margin+float64(c)*cell, margin+float64(row)*cell, cell, cell, fill)
			}
		}
	}
	sb.WriteString(`</svg>`)

	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(sb.String()))
}

func mirror(col int) []int {
	if col == 2 {
		return []int{2}
	}
	return []int{col, 4 - col}
}
