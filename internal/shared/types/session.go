package types

// SessionRecord is the server-side state of an open session
type SessionRecord struct {
	ID        string         `json:"id" yaml:"id"`
	GrainID   string         `json:"grain_id" yaml:"grain_id"`
	HostID    string         `json:"host_id" yaml:"host_id"`
	HasLoaded bool           `json:"has_loaded" yaml:"has_loaded"`
	ViewInfo  map[string]any `json:"view_info,omitempty" yaml:"view_info,omitempty"`
}

// SessionEventKind distinguishes change feed notifications
type SessionEventKind string

const (
	SessionAdded   SessionEventKind = "added"
	SessionRemoved SessionEventKind = "removed"
)

// SessionEvent is one change feed notification
type SessionEvent struct {
	Kind      SessionEventKind `json:"kind"`
	SessionID string           `json:"session_id"`
}

// TokenRequest holds the arguments of an open-by-token call
type TokenRequest struct {
	Token     string `json:"token"`
	Incognito bool   `json:"incognito"`
}

// OpenOutcome is the successful result of an open call: either Opened or
// Redirected. Failures travel on the error return.
type OpenOutcome interface {
	openOutcome()
}

// Opened means a session is now live
type Opened struct {
	GrainID   string `json:"grain_id"`
	SessionID string `json:"session_id"`
	Title     string `json:"title,omitempty"`
}

// Redirected means the token belongs to a grain the viewer owns; the
// caller should switch to the owned-grain route instead
type Redirected struct {
	GrainID string `json:"redirect_to_grain"`
}

func (Opened) openOutcome()     {}
func (Redirected) openOutcome() {}
