package grainview

// Size returns the storage size of the grain behind the live session
func (v *View) Size() (uint64, bool) {
	sessionID := v.SessionID()
	if sessionID == "" {
		return 0, false
	}
	return v.store.GrainSize(sessionID)
}

// HasLoaded reports whether the app inside the session finished loading
func (v *View) HasLoaded() bool {
	sessionID := v.SessionID()
	if sessionID == "" {
		return false
	}
	session, ok := v.store.Session(sessionID)
	return ok && session.HasLoaded
}

// Origin returns the origin the session's app is served from, "" without a session
func (v *View) Origin() string {
	sessionID := v.SessionID()
	if sessionID == "" {
		return ""
	}
	session, ok := v.store.Session(sessionID)
	if !ok {
		return ""
	}
	return v.resolver.settings.Hosts.Origin(session.HostID)
}

// ViewInfo returns the app-declared view info of the session
func (v *View) ViewInfo() map[string]any {
	sessionID := v.SessionID()
	if sessionID == "" {
		return nil
	}
	session, ok := v.store.Session(sessionID)
	if !ok {
		return nil
	}
	return session.ViewInfo
}

// Dispose stops watching the session feed. The caller does this when the
// tab goes away; the status is left as it is.
func (v *View) Dispose() {
	v.mu.Lock()
	stop := v.stopFeed
	v.stopFeed = nil
	v.disposed = true
	v.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Snapshot is a serializable copy of the view's state
type Snapshot struct {
	ID                string   `json:"id"`
	GrainID           string   `json:"grain_id"`
	Token             string   `json:"token,omitempty"`
	Route             string   `json:"route"`
	Status            Status   `json:"status"`
	Error             string   `json:"error,omitempty"`
	SessionID         string   `json:"session_id,omitempty"`
	Mode              string   `json:"mode"`
	Title             string   `json:"title"`
	AppTitle          string   `json:"app_title"`
	FrameTitle        string   `json:"frame_title"`
	IconSrc           string   `json:"icon_src"`
	Active            bool     `json:"active"`
	RevealIdentity    *bool    `json:"reveal_identity,omitempty"`
	ShowInterstitial  bool     `json:"show_interstitial"`
	Origin            string   `json:"origin,omitempty"`
	HasLoaded         bool     `json:"has_loaded"`
	GeneratedAPIToken string   `json:"generated_api_token,omitempty"`
	Link              DeepLink `json:"link"`
}

// Snapshot collects the current state. Fields are read one by one, so a
// concurrent transition may show up in some fields and not others.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	s := Snapshot{
		ID:                v.id.String(),
		GrainID:           v.grainID,
		Token:             v.token,
		Status:            v.status,
		Error:             v.errorMessage,
		SessionID:         v.sessionID,
		Active:            v.active,
		GeneratedAPIToken: v.generatedAPIToken,
		Link:              v.link,
	}
	v.mu.Unlock()

	mode := v.Mode()
	s.Mode = mode.Name()
	s.Route = v.Route()
	s.Title = v.Title()
	s.AppTitle = v.AppTitle()
	s.FrameTitle = v.FrameTitle()
	s.IconSrc = v.IconSrc()
	s.RevealIdentity = v.RevealIdentity()
	s.ShowInterstitial = v.token != "" && v.ShouldShowInterstitial()
	s.Origin = v.Origin()
	s.HasLoaded = v.HasLoaded()
	return s
}
