package grainview

import "errors"

var (
	// ErrUsage marks an operation invoked in the wrong state. The call had
	// no effect.
	ErrUsage = errors.New("grainview: usage error")

	// ErrInterstitialRequired means the viewer must choose between revealing
	// their identity and going incognito before the session can open
	ErrInterstitialRequired = errors.New("viewer must choose reveal or incognito")
)
