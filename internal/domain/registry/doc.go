// Package registry holds the shell's open views.
//
// Views are keyed by their id.ViewID, so removing one never disturbs the
// others, and removal of an already removed view is a harmless no-op. The
// Manager also tracks which view is in the foreground: exactly one
// registered view is active at a time.
//
// View methods that notify listeners are always called after the registry
// lock is released, so listeners may call back into the registry.
//
// Example Usage:
//
//	views := registry.NewManager().WithMetrics(metrics)
//	view := grainview.New(grainview.Deps{Registry: views, ...}, target)
//	views.Add(view)
//	views.Focus(view.ID())
package registry
