package grainview

import (
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/icons"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

const titleSeparator = " · "

// resolver computes presentation metadata for an access mode
type resolver struct {
	store    Store
	settings Settings
}

func (r resolver) title(mode AccessMode, q query) string {
	switch m := mode.(type) {
	case ModeOwner:
		return m.Grain.Title
	case ModeTokenOwner:
		if m.Token.Owner == nil {
			return ""
		}
		return m.Token.Owner.Title
	default:
		return q.transientTitle
	}
}

func (r resolver) appTitle(mode AccessMode) string {
	switch m := mode.(type) {
	case ModeOwner:
		pkg, ok := r.store.Package(m.Grain.PackageID)
		if !ok || pkg.Manifest == nil {
			return ""
		}
		return pkg.Manifest.AppTitle
	case ModeTokenOwner:
		if meta := tokenMetadata(m.Token); meta != nil {
			return meta.AppTitle
		}
	case ModeAnonymousToken:
		if m.Info != nil && m.Info.GrainMetadata != nil {
			return m.Info.GrainMetadata.AppTitle
		}
	}
	return ""
}

func (r resolver) iconSrc(mode AccessMode) string {
	switch m := mode.(type) {
	case ModeOwner:
		if pkg, ok := r.store.Package(m.Grain.PackageID); ok {
			return r.settings.Hosts.ForPackage(pkg, icons.UsageGrain)
		}
	case ModeTokenOwner:
		if src := r.metadataIcon(tokenMetadata(m.Token)); src != "" {
			return src
		}
	case ModeAnonymousToken:
		if m.Info != nil {
			if src := r.metadataIcon(m.Info.GrainMetadata); src != "" {
				return src
			}
		}
	}
	return icons.Fallback(icons.UsageGrain)
}

func (r resolver) metadataIcon(meta *types.GrainMetadata) string {
	if meta == nil {
		return ""
	}
	if meta.Icon != nil && meta.Icon.AssetID != "" {
		return r.settings.Hosts.AssetURL(meta.Icon.AssetID)
	}
	if meta.AppID != "" {
		return icons.Identicon(meta.AppID, icons.UsageGrain)
	}
	return ""
}

// frameTitle joins app title, grain title and product name
func (r resolver) frameTitle(appTitle, title string) string {
	product := r.settings.ProductName
	switch {
	case appTitle != "" && title != "":
		return appTitle + titleSeparator + title + titleSeparator + product
	case title != "":
		return title + titleSeparator + product
	default:
		return product
	}
}

func tokenMetadata(token *types.APIToken) *types.GrainMetadata {
	if token == nil || token.Owner == nil {
		return nil
	}
	return token.Owner.Metadata
}
