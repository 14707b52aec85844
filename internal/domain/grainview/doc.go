// Package grainview provides the view-model for one tab onto a grain.
//
// A View is reached either because the viewer owns the grain or because the
// viewer holds a capability token (a shared link). It owns three pieces of
// logic that must agree with each other:
//
//   - Session lifecycle: closed -> opening -> opened | error, and
//     opened -> closed when the server tears the session down
//   - Identity revelation: whether a token-based session discloses the
//     viewer to the grain owner, or requires the viewer to choose first
//   - Metadata resolution: title, app title and icon, dispatched over the
//     three access modes (owner, token owner, anonymous token use)
//
// Collaborators (store, remote open calls, change feed, navigator, view
// registry, viewer identity) are injected through Deps. Queries never do I/O
// beyond reading the store; OpenSession returns immediately and settles the
// remote call on its own goroutine.
//
// Example Usage:
//
//	view := grainview.New(deps, grainview.Target{Token: "tok", Link: link})
//	if view.ShouldShowInterstitial() {
//	    view.SetRevealIdentity(false)
//	}
//	if err := view.OpenSession(ctx); err != nil {
//	    // errors.Is(err, grainview.ErrUsage)
//	}
//	cancel := view.Subscribe(func() { render(view.Snapshot()) })
package grainview
