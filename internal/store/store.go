// Package store defines what the shell's data stores have in common.
//
// Two implementations exist: memory (maps, also the session change feed in
// single-process deployments and tests) and sqlite (durable, via
// modernc.org/sqlite). The seed package fills either from a YAML fixture.
//
// Reads report absent records with ok == false. Writes return ErrNotFound
// when the record they update does not exist.
package store

import (
	"errors"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// ErrNotFound is returned by writes whose target record does not exist
var ErrNotFound = errors.New("store: record not found")

// Sink accepts records, typically from a fixture
type Sink interface {
	PutGrain(grain types.Grain) error
	PutPackage(pkg types.Package) error
	PutToken(token types.APIToken) error
	PutTokenInfo(info types.TokenInfo) error
	PutSession(session types.SessionRecord) error
	SetGrainSize(sessionID string, size uint64) error
}

// GrainScoped reports whether a token grants the whole grain rather than
// one object inside it
func GrainScoped(token *types.APIToken) bool {
	return token.ObjectID == ""
}
