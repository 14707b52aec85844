/*
Package shell creates grain views and wires them to the shared registry.

It is the application layer between transports and the grainview package:
a caller asks for a view onto an owned grain or a shared link, the shell
prefetches token info for shared links, builds the view with the configured
collaborators and registers it.

Redirects:

When a shared link turns out to point at a grain the viewer owns, the view
navigates to the owned-grain route. The shell handles that navigation by
registering and opening a fresh owned-grain view for the same viewer and
remembering which view it replaced, so Resolve can send clients holding the
old id to the new one.

Example Usage:

	sh := shell.New(shell.Deps{
	    Store:    store,
	    Opener:   client,
	    Feed:     feed,
	    Registry: registry.NewManager(),
	    Logger:   logger,
	})

	view, err := sh.CreateView(ctx, shell.Request{Token: "abc", UserID: "alice"})
	if err != nil {
	    return err
	}
	err = view.OpenSession(ctx)
*/
package shell
