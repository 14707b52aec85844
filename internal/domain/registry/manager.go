package registry

import (
	"sync"

	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/grainview"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/id"
)

// Stats summarizes the registry
type Stats struct {
	TotalViews int                      `json:"total_views"`
	ByStatus   map[grainview.Status]int `json:"by_status"`
	TokenViews int                      `json:"token_views"`
	FocusedID  *id.ViewID               `json:"focused_id,omitempty"`
}

// Manager is the shared, ordered set of open views.
//
// focusMu serializes Add, Remove and Focus including the SetActive calls
// they make, so the active flags always settle on the focused view. View
// listeners may read the registry but must not call those three methods
// synchronously.
type Manager struct {
	focusMu sync.Mutex

	mu        sync.RWMutex
	views     map[id.ViewID]*grainview.View // Protected by mu
	order     []id.ViewID                   // Protected by mu
	focusedID *id.ViewID                    // Protected by mu
	metrics   *monitoring.Metrics
}

// NewManager creates an empty registry
func NewManager() *Manager {
	return &Manager{
		views: make(map[id.ViewID]*grainview.View),
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Add registers a view and focuses it
func (m *Manager) Add(view *grainview.View) {
	m.focusMu.Lock()
	defer m.focusMu.Unlock()

	m.mu.Lock()
	viewID := view.ID()
	if _, exists := m.views[viewID]; !exists {
		m.order = append(m.order, viewID)
	}
	m.views[viewID] = view
	prev := m.focus(viewID)
	count := len(m.views)
	m.mu.Unlock()

	m.metrics.SetViewsRegistered(count)
	if prev != nil {
		prev.SetActive(false)
	}
	view.SetActive(true)
}

// Get retrieves a view by ID
func (m *Manager) Get(viewID id.ViewID) (*grainview.View, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	view, ok := m.views[viewID]
	return view, ok
}

// List returns the views in the order they were added
func (m *Manager) List() []*grainview.View {
	m.mu.RLock()
	defer m.mu.RUnlock()

	views := make([]*grainview.View, 0, len(m.order))
	for _, viewID := range m.order {
		views = append(views, m.views[viewID])
	}
	return views
}

// Remove drops a view by identity and disposes it. Removing a view that is
// not registered is a no-op and returns false. When the focused view goes,
// the most recently added remaining view takes focus.
func (m *Manager) Remove(viewID id.ViewID) bool {
	m.focusMu.Lock()
	defer m.focusMu.Unlock()

	m.mu.Lock()
	view, ok := m.views[viewID]
	if !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.views, viewID)
	for i, other := range m.order {
		if other == viewID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	var next *grainview.View
	if m.focusedID != nil && *m.focusedID == viewID {
		m.focusedID = nil
		if n := len(m.order); n > 0 {
			next = m.views[m.order[n-1]]
			m.focus(next.ID())
		}
	}
	count := len(m.views)
	m.mu.Unlock()

	m.metrics.SetViewsRegistered(count)
	view.SetActive(false)
	view.Dispose()
	if next != nil {
		next.SetActive(true)
	}
	return true
}

// Focus brings a view to the foreground; every other view becomes inactive
func (m *Manager) Focus(viewID id.ViewID) bool {
	m.focusMu.Lock()
	defer m.focusMu.Unlock()

	m.mu.Lock()
	view, ok := m.views[viewID]
	if !ok {
		m.mu.Unlock()
		return false
	}
	prev := m.focus(viewID)
	m.mu.Unlock()

	if prev != nil {
		prev.SetActive(false)
	}
	view.SetActive(true)
	return true
}

// Focused returns the foreground view
func (m *Manager) Focused() (*grainview.View, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.focusedID == nil {
		return nil, false
	}
	view, ok := m.views[*m.focusedID]
	return view, ok
}

// focus records viewID as focused and returns the previously focused view,
// if it differs. Must be called with mu held.
func (m *Manager) focus(viewID id.ViewID) *grainview.View {
	var prev *grainview.View
	if m.focusedID != nil && *m.focusedID != viewID {
		prev = m.views[*m.focusedID]
	}
	focused := viewID
	m.focusedID = &focused
	return prev
}

// Stats returns registry statistics
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	views := make([]*grainview.View, 0, len(m.views))
	for _, view := range m.views {
		views = append(views, view)
	}
	var focusedID *id.ViewID
	if m.focusedID != nil {
		focused := *m.focusedID
		focusedID = &focused
	}
	m.mu.RUnlock()

	stats := Stats{
		TotalViews: len(views),
		ByStatus:   make(map[grainview.Status]int),
		FocusedID:  focusedID,
	}
	for _, view := range views {
		stats.ByStatus[view.Status()]++
		if view.Token() != "" {
			stats.TokenViews++
		}
	}
	return stats
}
