package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/grainview"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/shell/internal/tokeninfo"
)

// maxRedirectHops bounds Resolve when following chained redirects
const maxRedirectHops = 8

var (
	// ErrInvalidRequest means a view request named neither or both of a
	// grain id and a token
	ErrInvalidRequest = errors.New("exactly one of grain id and token is required")

	// ErrInvalidToken means the shared link is unknown to the server
	ErrInvalidToken = tokeninfo.ErrInvalidToken
)

// Prefetcher fills the token-info cache for a shared link
type Prefetcher interface {
	Prefetch(ctx context.Context, token string) (*types.TokenInfo, error)
}

// Deps bundles the collaborators handed to every view. Store, Opener and
// Registry are required.
type Deps struct {
	Store      grainview.Store
	Opener     grainview.Opener
	Feed       grainview.SessionFeed
	Registry   *registry.Manager
	Prefetcher Prefetcher
	Settings   grainview.Settings
	Logger     *zap.Logger
	Metrics    *monitoring.Metrics
}

// Request describes the view to create
type Request struct {
	GrainID string
	Token   string
	Link    grainview.DeepLink
	// UserID is the authenticated viewer, "" when logged out
	UserID string
}

// Shell creates views and tracks redirects between them
type Shell struct {
	deps   Deps
	logger *zap.Logger

	mu        sync.RWMutex
	redirects map[id.ViewID]id.ViewID // Protected by mu
	// pending holds views that left the registry for a redirect whose
	// target view does not exist yet
	pending map[id.ViewID]*grainview.View // Protected by mu
}

// New creates a shell
func New(deps Deps) *Shell {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Settings.ProductName == "" {
		deps.Settings = grainview.DefaultSettings()
	}
	return &Shell{
		deps:      deps,
		logger:    deps.Logger,
		redirects: make(map[id.ViewID]id.ViewID),
		pending:   make(map[id.ViewID]*grainview.View),
	}
}

// Registry returns the registry views are added to
func (s *Shell) Registry() *registry.Manager {
	return s.deps.Registry
}

// CreateView builds a closed view for req and registers it. Shared links
// have their token info prefetched first; an unknown token fails the call,
// any other prefetch failure only leaves the cache cold.
func (s *Shell) CreateView(ctx context.Context, req Request) (*grainview.View, error) {
	if (req.GrainID == "") == (req.Token == "") {
		return nil, ErrInvalidRequest
	}

	if req.Token != "" && s.deps.Prefetcher != nil {
		if _, err := s.deps.Prefetcher.Prefetch(ctx, req.Token); err != nil {
			if errors.Is(err, ErrInvalidToken) {
				return nil, fmt.Errorf("create view: %w", err)
			}
			s.logger.Warn("Token info prefetch failed", zap.Error(err))
		}
	}

	nav := &navigator{shell: s, userID: req.UserID}
	view := grainview.New(grainview.Deps{
		Store:     s.deps.Store,
		Opener:    s.deps.Opener,
		Feed:      s.deps.Feed,
		Navigator: nav,
		Registry:  nav,
		Identity:  grainview.Viewer(req.UserID),
		Settings:  s.deps.Settings,
		Logger:    s.logger,
		Metrics:   s.deps.Metrics,
	}, grainview.Target{GrainID: req.GrainID, Token: req.Token, Link: req.Link})
	nav.from = view.ID()

	s.deps.Registry.Add(view)
	s.logger.Debug("View created",
		zap.String("view_id", view.ID().String()),
		zap.Bool("shared", req.Token != ""))
	return view, nil
}

// Resolve finds a view by id, following redirects. redirected is true when
// the returned view replaced the one asked for.
func (s *Shell) Resolve(viewID id.ViewID) (view *grainview.View, redirected bool, ok bool) {
	current := viewID
	for hop := 0; hop <= maxRedirectHops; hop++ {
		if view, ok := s.deps.Registry.Get(current); ok {
			return view, current != viewID, true
		}
		s.mu.RLock()
		next, found := s.redirects[current]
		waiting := s.pending[current]
		s.mu.RUnlock()
		if !found {
			// Between leaving the registry and its redirect being recorded,
			// a view still answers for itself
			if waiting != nil {
				return waiting, current != viewID, true
			}
			return nil, false, false
		}
		current = next
	}
	return nil, false, false
}

// Close removes a view and forgets the redirects that lead to it
func (s *Shell) Close(viewID id.ViewID) bool {
	removed := s.deps.Registry.Remove(viewID)

	s.mu.Lock()
	if _, ok := s.pending[viewID]; ok {
		delete(s.pending, viewID)
		removed = true
	}
	delete(s.redirects, viewID)
	for from, to := range s.redirects {
		if to == viewID {
			delete(s.redirects, from)
		}
	}
	s.mu.Unlock()

	return removed
}

// Redirects returns the number of remembered redirects
func (s *Shell) Redirects() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.redirects)
}

// beginRedirect takes view out of the registry and keeps it resolvable until
// recordRedirect or dropRedirect settles where it went
func (s *Shell) beginRedirect(viewID id.ViewID) bool {
	view, ok := s.deps.Registry.Get(viewID)
	if ok {
		s.mu.Lock()
		s.pending[viewID] = view
		s.mu.Unlock()
	}
	return s.deps.Registry.Remove(viewID)
}

func (s *Shell) recordRedirect(from, to id.ViewID) {
	s.mu.Lock()
	s.redirects[from] = to
	delete(s.pending, from)
	s.mu.Unlock()
}

func (s *Shell) dropRedirect(from id.ViewID) {
	s.mu.Lock()
	delete(s.pending, from)
	s.mu.Unlock()
}
