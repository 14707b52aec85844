package grainview

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/signal"
)

// Target is what a view was opened onto
type Target struct {
	GrainID string
	Token   string
	Link    DeepLink
}

// View is the view-model of one tab onto a grain
type View struct {
	id    id.ViewID
	token string
	link  DeepLink

	store     Store
	opener    Opener
	feed      SessionFeed
	navigator Navigator
	registry  Registry
	identity  Identity
	logger    *zap.Logger
	metrics   *monitoring.Metrics

	resolver resolver
	policy   revealPolicy
	changes  *signal.Signal

	mu                 sync.Mutex
	grainID            string // Protected by mu
	status             Status // Protected by mu
	errorMessage       string // Protected by mu
	sessionID          string // Protected by mu
	stopFeed           func() // Protected by mu
	disposed           bool   // Protected by mu
	revealIdentity     *bool  // Protected by mu
	transientTitle     string // Protected by mu
	frameTitleOverride *string
	active             bool
	generatedAPIToken  string
}

// New creates a closed view onto target
func New(deps Deps, target Target) *View {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := deps.Settings
	if settings.ProductName == "" {
		settings = DefaultSettings()
	}

	viewID := id.NewViewID()
	return &View{
		id:        viewID,
		token:     target.Token,
		link:      target.Link,
		store:     deps.Store,
		opener:    deps.Opener,
		feed:      deps.Feed,
		navigator: deps.Navigator,
		registry:  deps.Registry,
		identity:  deps.Identity,
		logger:    logger.With(zap.String("view_id", viewID.String())),
		metrics:   deps.Metrics,
		resolver:  resolver{store: deps.Store, settings: settings},
		policy:    revealPolicy{store: deps.Store},
		changes:   signal.New(),
		grainID:   target.GrainID,
		status:    StatusClosed,
	}
}

// ID returns the stable identity of the view
func (v *View) ID() id.ViewID {
	return v.id
}

// Token returns the capability token, "" for owned-grain views
func (v *View) Token() string {
	return v.token
}

// Link returns the deep link captured at construction
func (v *View) Link() DeepLink {
	return v.link
}

// GrainID returns the current grain id
func (v *View) GrainID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.grainID
}

// SessionID returns the live session id, "" if none
func (v *View) SessionID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sessionID
}

// Status returns the session lifecycle state
func (v *View) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// Error returns the failure message while the status is StatusError
func (v *View) Error() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errorMessage
}

// Route returns the shell route of this view
func (v *View) Route() string {
	if v.token != "" {
		return Route{Name: RouteShared, Token: v.token}.Base()
	}
	return Route{Name: RouteGrain, GrainID: v.GrainID()}.Base()
}

// Subscribe registers fn to run after every state change
func (v *View) Subscribe(fn func()) func() {
	return v.changes.Subscribe(fn)
}

// Changes returns the signal notified after every state change
func (v *View) Changes() *signal.Signal {
	return v.changes
}

// IsActive reports whether this view is the foreground one
func (v *View) IsActive() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active
}

// SetActive marks the view as foreground or background
func (v *View) SetActive(active bool) {
	v.mu.Lock()
	v.active = active
	v.mu.Unlock()
	v.changes.Notify()
}

// GeneratedAPIToken returns the last sharing token generated from this view
func (v *View) GeneratedAPIToken() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.generatedAPIToken
}

// SetGeneratedAPIToken records a sharing token generated from this view
func (v *View) SetGeneratedAPIToken(token string) {
	v.mu.Lock()
	v.generatedAPIToken = token
	v.mu.Unlock()
	v.changes.Notify()
}

// UserID returns the viewer this view was created for, "" when logged out
func (v *View) UserID() string {
	if v.identity == nil {
		return ""
	}
	return v.identity.UserID()
}

// snapshotQuery must be called with mu held
func (v *View) snapshotQuery() query {
	return query{
		grainID:        v.grainID,
		token:          v.token,
		userID:         v.UserID(),
		transientTitle: v.transientTitle,
	}
}

func (v *View) query() query {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotQuery()
}

// Mode returns the current access mode
func (v *View) Mode() AccessMode {
	return resolveMode(v.store, v.query())
}

// IsOwner reports whether the viewer owns the grain
func (v *View) IsOwner() bool {
	_, ok := v.Mode().(ModeOwner)
	return ok
}

// Title returns the viewer's name for the grain, not the frame title
func (v *View) Title() string {
	q := v.query()
	return v.resolver.title(resolveMode(v.store, q), q)
}

// AppTitle returns the title of the app the grain runs
func (v *View) AppTitle() string {
	return v.resolver.appTitle(v.Mode())
}

// IconSrc returns the grain's icon URL, falling back to a fixed identicon
func (v *View) IconSrc() string {
	return v.resolver.iconSrc(v.Mode())
}

// FrameTitle returns the title reported by the app if any, else a title
// built from app title, grain title and product name
func (v *View) FrameTitle() string {
	v.mu.Lock()
	override := v.frameTitleOverride
	v.mu.Unlock()
	if override != nil {
		return *override
	}

	q := v.query()
	mode := resolveMode(v.store, q)
	return v.resolver.frameTitle(v.resolver.appTitle(mode), v.resolver.title(mode, q))
}

// SetFrameTitle records the title reported by the embedded app
func (v *View) SetFrameTitle(title string) {
	v.mu.Lock()
	v.frameTitleOverride = &title
	v.mu.Unlock()
	v.changes.Notify()
}

// ClearFrameTitle drops the app-reported title
func (v *View) ClearFrameTitle() {
	v.mu.Lock()
	v.frameTitleOverride = nil
	v.mu.Unlock()
	v.changes.Notify()
}

// SetTitle renames the grain for this viewer. Owners rename the grain,
// token holders rename their token, anonymous viewers rename only this view.
func (v *View) SetTitle(title string) error {
	var err error
	switch m := v.Mode().(type) {
	case ModeOwner:
		err = v.store.SetGrainTitle(m.Grain.ID, title)
	case ModeTokenOwner:
		err = v.store.SetTokenTitle(m.Token.ID, title)
	default:
		v.mu.Lock()
		v.transientTitle = title
		v.mu.Unlock()
	}
	if err != nil {
		v.logger.Warn("Failed to store title", zap.Error(err))
		return err
	}
	v.changes.Notify()
	return nil
}

// RevealIdentity returns the viewer's explicit choice, nil if undecided
func (v *View) RevealIdentity() *bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.revealIdentity == nil {
		return nil
	}
	reveal := *v.revealIdentity
	return &reveal
}

// SetRevealIdentity records the viewer's reveal/incognito choice
func (v *View) SetRevealIdentity(reveal bool) {
	v.mu.Lock()
	v.revealIdentity = &reveal
	v.mu.Unlock()
	v.changes.Notify()
}

// HasAlreadyRevealedIdentityToOwner reports whether the grain owner already
// knows who the viewer is
func (v *View) HasAlreadyRevealedIdentityToOwner() bool {
	return v.policy.alreadyRevealed(v.query())
}

// ShouldShowInterstitial reports whether the viewer must choose between
// reveal and incognito before OpenSession can proceed
func (v *View) ShouldShowInterstitial() bool {
	v.mu.Lock()
	reveal := v.revealIdentity
	q := v.snapshotQuery()
	v.mu.Unlock()
	return v.policy.showInterstitial(reveal, q)
}

// ResolveReveal returns whether a token-based open reveals the viewer
func (v *View) ResolveReveal() bool {
	v.mu.Lock()
	reveal := v.revealIdentity
	q := v.snapshotQuery()
	v.mu.Unlock()
	return v.policy.resolve(reveal, q)
}
