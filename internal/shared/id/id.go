// Package id provides ULID-based identifiers for shell-side objects.
//
// Grain, session and token identifiers are issued by the server and stay
// opaque strings; only views, which the shell creates itself, get generated
// IDs here. Request ids are UUIDs assigned by the HTTP middleware.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ViewID identifies one open view onto a grain
type ViewID string

// ViewPrefix is the prefix of every view id
const ViewPrefix = "view"

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string, e.g. view_01H...
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewViewID generates a new view ID
func NewViewID() ViewID {
	return ViewID(Default().GenerateWithPrefix(ViewPrefix))
}

func (id ViewID) String() string { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// ParseViewID validates a prefixed view ID coming from outside the process
func ParseViewID(s string) (ViewID, error) {
	prefix, rest, ok := strings.Cut(s, "_")
	if !ok || prefix != ViewPrefix {
		return "", fmt.Errorf("invalid view id %q: missing %s_ prefix", s, ViewPrefix)
	}
	if !IsValid(rest) {
		return "", fmt.Errorf("invalid view id %q: bad ulid", s)
	}
	return ViewID(s), nil
}
