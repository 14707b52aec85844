package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/shell/internal/store"
)

type subscriber struct {
	sessionID string
	handler   func(types.SessionEvent)
}

// Store keeps every record in memory. It also serves as the session change
// feed: PutSession and RemoveSession notify subscribers of that session.
type Store struct {
	mu        sync.RWMutex
	grains    map[string]*types.Grain         // Protected by mu
	packages  map[string]*types.Package       // Protected by mu
	tokens    map[string]*types.APIToken      // Protected by mu
	tokenInfo map[string]*types.TokenInfo     // Protected by mu
	sessions  map[string]*types.SessionRecord // Protected by mu
	sizes     map[string]uint64               // Protected by mu

	subMu  sync.Mutex
	subs   map[uint64]subscriber // Protected by subMu
	nextID uint64                // Protected by subMu
}

// New creates an empty store
func New() *Store {
	return &Store{
		grains:    make(map[string]*types.Grain),
		packages:  make(map[string]*types.Package),
		tokens:    make(map[string]*types.APIToken),
		tokenInfo: make(map[string]*types.TokenInfo),
		sessions:  make(map[string]*types.SessionRecord),
		sizes:     make(map[string]uint64),
		subs:      make(map[uint64]subscriber),
	}
}

// OwnedGrain returns the grain if userID owns it
func (s *Store) OwnedGrain(grainID, userID string) (*types.Grain, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grain, ok := s.grains[grainID]
	if !ok || grain.UserID != userID {
		return nil, false
	}
	grainCopy := *grain
	return &grainCopy, true
}

// Grain returns a grain regardless of owner
func (s *Store) Grain(grainID string) (*types.Grain, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grain, ok := s.grains[grainID]
	if !ok {
		return nil, false
	}
	grainCopy := *grain
	return &grainCopy, true
}

// EarliestToken returns the oldest grain-scoped token for grainID held by userID
func (s *Store) EarliestToken(grainID, userID string) (*types.APIToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var earliest *types.APIToken
	for _, token := range s.tokens {
		if token.GrainID != grainID || token.OwnerUserID() != userID || !store.GrainScoped(token) {
			continue
		}
		if earliest == nil || token.CreatedAt.Before(earliest.CreatedAt) ||
			(token.CreatedAt.Equal(earliest.CreatedAt) && token.ID < earliest.ID) {
			earliest = token
		}
	}
	if earliest == nil {
		return nil, false
	}
	return copyToken(earliest), true
}

// HasTokenFrom reports whether issuerID issued any token now held by ownerID
func (s *Store) HasTokenFrom(issuerID, ownerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, token := range s.tokens {
		if token.UserID == issuerID && token.OwnerUserID() == ownerID {
			return true
		}
	}
	return false
}

// TokenInfo returns the cached info for a shared link token
func (s *Store) TokenInfo(token string) (*types.TokenInfo, bool) {
	if token == "" {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.tokenInfo[token]
	if !ok {
		return nil, false
	}
	infoCopy := *info
	return &infoCopy, true
}

// Package returns an installed package
func (s *Store) Package(packageID string) (*types.Package, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pkg, ok := s.packages[packageID]
	if !ok {
		return nil, false
	}
	pkgCopy := *pkg
	return &pkgCopy, true
}

// Session returns a session record
func (s *Store) Session(sessionID string) (*types.SessionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	sessionCopy := *session
	sessionCopy.ViewInfo = maps.Clone(session.ViewInfo)
	return &sessionCopy, true
}

// GrainSize returns the storage size reported for a session's grain
func (s *Store) GrainSize(sessionID string) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size, ok := s.sizes[sessionID]
	return size, ok
}

// SetGrainTitle renames a grain
func (s *Store) SetGrainTitle(grainID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	grain, ok := s.grains[grainID]
	if !ok {
		return fmt.Errorf("grain %s: %w", grainID, store.ErrNotFound)
	}
	grain.Title = title
	return nil
}

// SetTokenTitle renames the holder's annotation of a token
func (s *Store) SetTokenTitle(tokenID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[tokenID]
	if !ok || token.Owner == nil {
		return fmt.Errorf("token %s: %w", tokenID, store.ErrNotFound)
	}
	owner := *token.Owner
	owner.Title = title
	token.Owner = &owner
	return nil
}

// PutGrain inserts or replaces a grain
func (s *Store) PutGrain(grain types.Grain) error {
	s.mu.Lock()
	s.grains[grain.ID] = &grain
	s.mu.Unlock()
	return nil
}

// PutPackage inserts or replaces a package
func (s *Store) PutPackage(pkg types.Package) error {
	s.mu.Lock()
	s.packages[pkg.ID] = &pkg
	s.mu.Unlock()
	return nil
}

// PutToken inserts or replaces a token
func (s *Store) PutToken(token types.APIToken) error {
	s.mu.Lock()
	s.tokens[token.ID] = copyToken(&token)
	s.mu.Unlock()
	return nil
}

// PutTokenInfo caches the info of a shared link
func (s *Store) PutTokenInfo(info types.TokenInfo) error {
	s.mu.Lock()
	s.tokenInfo[info.Token] = &info
	s.mu.Unlock()
	return nil
}

// SetGrainSize records the storage size of a session's grain
func (s *Store) SetGrainSize(sessionID string, size uint64) error {
	s.mu.Lock()
	s.sizes[sessionID] = size
	s.mu.Unlock()
	return nil
}

// PutSession inserts or replaces a session and notifies its subscribers
func (s *Store) PutSession(session types.SessionRecord) error {
	s.mu.Lock()
	session.ViewInfo = maps.Clone(session.ViewInfo)
	s.sessions[session.ID] = &session
	s.mu.Unlock()

	s.publish(types.SessionEvent{Kind: types.SessionAdded, SessionID: session.ID})
	return nil
}

// RemoveSession deletes a session and notifies its subscribers. Removing an
// unknown session notifies nobody and returns false.
func (s *Store) RemoveSession(sessionID string) bool {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	delete(s.sizes, sessionID)
	s.mu.Unlock()

	if ok {
		s.publish(types.SessionEvent{Kind: types.SessionRemoved, SessionID: sessionID})
	}
	return ok
}

// Subscribe delivers added/removed events for sessionID until the returned
// function is called or ctx is done. If the session already exists, an
// added event is delivered before Subscribe returns.
func (s *Store) Subscribe(ctx context.Context, sessionID string, handler func(types.SessionEvent)) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.subMu.Lock()
	s.nextID++
	subID := s.nextID
	s.subs[subID] = subscriber{sessionID: sessionID, handler: handler}
	s.subMu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, subID)
			s.subMu.Unlock()
		})
	}
	context.AfterFunc(ctx, stop)

	s.mu.RLock()
	_, exists := s.sessions[sessionID]
	s.mu.RUnlock()
	if exists {
		handler(types.SessionEvent{Kind: types.SessionAdded, SessionID: sessionID})
	}
	return stop, nil
}

// Subscribers returns the number of live subscriptions
func (s *Store) Subscribers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

// publish runs matching handlers with no lock held
func (s *Store) publish(ev types.SessionEvent) {
	s.subMu.Lock()
	handlers := make([]func(types.SessionEvent), 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.sessionID == ev.SessionID {
			handlers = append(handlers, sub.handler)
		}
	}
	s.subMu.Unlock()

	for _, handler := range handlers {
		handler(ev)
	}
}

func copyToken(token *types.APIToken) *types.APIToken {
	tokenCopy := *token
	if token.Owner != nil {
		owner := *token.Owner
		tokenCopy.Owner = &owner
	}
	return &tokenCopy
}
