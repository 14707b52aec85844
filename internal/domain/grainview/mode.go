package grainview

import "github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"

// AccessMode is how the viewer reaches the grain. Exactly one of
// ModeOwner, ModeTokenOwner and ModeAnonymousToken applies at a time; each
// carries the record that selected it.
type AccessMode interface {
	Name() string
	accessMode()
}

// ModeOwner: the viewer owns the grain
type ModeOwner struct {
	Grain *types.Grain
}

// ModeTokenOwner: the viewer holds a durable token for the grain
type ModeTokenOwner struct {
	Token *types.APIToken
}

// ModeAnonymousToken: the viewer uses a shared link without a durable
// record of their own. Info is nil when the link has no cached token info.
type ModeAnonymousToken struct {
	Info *types.TokenInfo
}

func (ModeOwner) Name() string          { return "owner" }
func (ModeTokenOwner) Name() string     { return "token_owner" }
func (ModeAnonymousToken) Name() string { return "anonymous_token" }

func (ModeOwner) accessMode()          {}
func (ModeTokenOwner) accessMode()     {}
func (ModeAnonymousToken) accessMode() {}

// query is the per-call snapshot of view state the resolver works from
type query struct {
	grainID        string
	token          string
	userID         string
	transientTitle string
}

// resolveMode selects the access mode: owner first, then token owner, else
// anonymous token use
func resolveMode(store Store, q query) AccessMode {
	if q.userID != "" {
		if grain, ok := store.OwnedGrain(q.grainID, q.userID); ok {
			return ModeOwner{Grain: grain}
		}
		if token, ok := store.EarliestToken(q.grainID, q.userID); ok {
			return ModeTokenOwner{Token: token}
		}
	}
	info, _ := store.TokenInfo(q.token)
	return ModeAnonymousToken{Info: info}
}
