package grainview

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/icons"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// Identity reports the authenticated viewer, "" when logged out
type Identity interface {
	UserID() string
}

// Viewer is a fixed Identity
type Viewer string

// Anonymous is the logged-out viewer
const Anonymous Viewer = ""

// UserID implements Identity
func (v Viewer) UserID() string { return string(v) }

// Store is the read surface of the shell's data store plus the two title
// writes. Absent records are reported with ok == false, never as errors.
type Store interface {
	OwnedGrain(grainID, userID string) (*types.Grain, bool)
	Grain(grainID string) (*types.Grain, bool)
	// EarliestToken returns the oldest grain-scoped token for grainID held by userID
	EarliestToken(grainID, userID string) (*types.APIToken, bool)
	// HasTokenFrom reports whether issuerID ever issued a token now held by ownerID
	HasTokenFrom(issuerID, ownerID string) bool
	TokenInfo(token string) (*types.TokenInfo, bool)
	Package(packageID string) (*types.Package, bool)
	Session(sessionID string) (*types.SessionRecord, bool)
	GrainSize(sessionID string) (uint64, bool)

	SetGrainTitle(grainID, title string) error
	SetTokenTitle(tokenID, title string) error
}

// Opener issues the remote open calls
type Opener interface {
	OpenGrain(ctx context.Context, grainID string) (types.OpenOutcome, error)
	OpenToken(ctx context.Context, req types.TokenRequest) (types.OpenOutcome, error)
}

// SessionFeed delivers added/removed notifications for one session until
// the returned stop function is called
type SessionFeed interface {
	Subscribe(ctx context.Context, sessionID string, handler func(types.SessionEvent)) (func(), error)
}

// Navigator switches the shell to another route
type Navigator interface {
	Go(route Route)
}

// Registry is the shared set of open views
type Registry interface {
	Remove(viewID id.ViewID) bool
}

// Settings holds presentation settings
type Settings struct {
	ProductName string
	Hosts       icons.Hosts
}

// DefaultSettings returns the settings used when none are configured
func DefaultSettings() Settings {
	return Settings{
		ProductName: "Sandstorm",
		Hosts:       icons.Hosts{Protocol: "http:", Wildcard: "*.local.sandstorm.io:6080"},
	}
}

// Deps bundles the collaborators of a View. Store and Opener are required;
// the rest may be nil.
type Deps struct {
	Store     Store
	Opener    Opener
	Feed      SessionFeed
	Navigator Navigator
	Registry  Registry
	Identity  Identity
	Settings  Settings
	Logger    *zap.Logger
	Metrics   *monitoring.Metrics
}
