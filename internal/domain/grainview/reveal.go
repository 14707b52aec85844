package grainview

// revealPolicy decides whether opening a token-based session discloses the
// viewer's identity to the grain owner
type revealPolicy struct {
	store Store
}

// alreadyRevealed is true when revealing again discloses nothing new: the
// viewer owns the grain, or already holds a token issued by the same
// principal that issued this one.
//
// TODO(identity): consult the viewer's contacts instead of token ownership
// once contacts are synced into the store.
func (p revealPolicy) alreadyRevealed(q query) bool {
	if q.userID == "" {
		return false
	}
	if _, ok := p.store.OwnedGrain(q.grainID, q.userID); ok {
		return true
	}
	info, ok := p.store.TokenInfo(q.token)
	if !ok || info.APIToken == nil || info.APIToken.UserID == "" {
		return false
	}
	return p.store.HasTokenFrom(info.APIToken.UserID, q.userID)
}

func (p revealPolicy) showInterstitial(reveal *bool, q query) bool {
	if reveal != nil {
		return false
	}
	if q.userID == "" {
		return false
	}
	return !p.alreadyRevealed(q)
}

// resolve never reveals a logged-out viewer, whatever was chosen: there is
// no identity to disclose
func (p revealPolicy) resolve(reveal *bool, q query) bool {
	if q.userID == "" {
		return false
	}
	if reveal != nil {
		return *reveal
	}
	return p.alreadyRevealed(q)
}
