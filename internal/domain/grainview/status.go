package grainview

// Status is the session lifecycle state of a view
type Status string

const (
	StatusClosed  Status = "closed"
	StatusOpening Status = "opening"
	StatusOpened  Status = "opened"
	StatusError   Status = "error"
)

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// HasSession reports whether a remote session may be live in this state
func (s Status) HasSession() bool {
	return s == StatusOpening || s == StatusOpened
}
