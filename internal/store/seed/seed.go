package seed

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/shell/internal/store"
)

// Fixture is the YAML layout of a seed file
type Fixture struct {
	Packages   []types.Package       `yaml:"packages"`
	Grains     []types.Grain         `yaml:"grains"`
	Tokens     []types.APIToken      `yaml:"tokens"`
	TokenInfo  []types.TokenInfo     `yaml:"token_info"`
	Sessions   []types.SessionRecord `yaml:"sessions"`
	GrainSizes map[string]uint64     `yaml:"grain_sizes"`
}

// Stats counts what a load wrote
type Stats struct {
	Packages  int
	Grains    int
	Tokens    int
	TokenInfo int
	Sessions  int
}

func (s *Stats) add(other Stats) {
	s.Packages += other.Packages
	s.Grains += other.Grains
	s.Tokens += other.Tokens
	s.TokenInfo += other.TokenInfo
	s.Sessions += other.Sessions
}

// Parse decodes a fixture, rejecting unknown fields
func Parse(data []byte) (*Fixture, error) {
	var fixture Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.DisallowUnknownField())
	if err := dec.Decode(&fixture); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := fixture.validate(); err != nil {
		return nil, err
	}
	return &fixture, nil
}

// LoadFile parses the fixture at path and writes it into sink
func LoadFile(path string, sink store.Sink) (Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Stats{}, fmt.Errorf("read fixture: %w", err)
	}
	fixture, err := Parse(data)
	if err != nil {
		return Stats{}, err
	}
	return Load(fixture, sink)
}

// LoadGlob loads every fixture matching pattern, in lexical order. The
// pattern may use ** to match across directories; a plain path loads one
// file. Matching nothing is an error.
func LoadGlob(pattern string, sink store.Sink) (Stats, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return Stats{}, fmt.Errorf("bad fixture pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return Stats{}, fmt.Errorf("no fixture matches %q", pattern)
	}
	slices.Sort(matches)

	var total Stats
	for _, path := range matches {
		stats, err := LoadFile(path, sink)
		total.add(stats)
		if err != nil {
			return total, fmt.Errorf("%s: %w", path, err)
		}
	}
	return total, nil
}

// Load writes every record of fixture into sink. It stops at the first
// failed write.
func Load(fixture *Fixture, sink store.Sink) (Stats, error) {
	var stats Stats

	for _, pkg := range fixture.Packages {
		if err := sink.PutPackage(pkg); err != nil {
			return stats, fmt.Errorf("package %s: %w", pkg.ID, err)
		}
		stats.Packages++
	}
	for _, grain := range fixture.Grains {
		if err := sink.PutGrain(grain); err != nil {
			return stats, fmt.Errorf("grain %s: %w", grain.ID, err)
		}
		stats.Grains++
	}
	for _, token := range fixture.Tokens {
		if err := sink.PutToken(token); err != nil {
			return stats, fmt.Errorf("token %s: %w", token.ID, err)
		}
		stats.Tokens++
	}
	for _, info := range fixture.TokenInfo {
		if err := sink.PutTokenInfo(info); err != nil {
			return stats, fmt.Errorf("token info %s: %w", info.Token, err)
		}
		stats.TokenInfo++
	}
	for _, session := range fixture.Sessions {
		if err := sink.PutSession(session); err != nil {
			return stats, fmt.Errorf("session %s: %w", session.ID, err)
		}
		stats.Sessions++
	}
	for sessionID, size := range fixture.GrainSizes {
		if err := sink.SetGrainSize(sessionID, size); err != nil {
			return stats, fmt.Errorf("grain size %s: %w", sessionID, err)
		}
	}
	return stats, nil
}

func (f *Fixture) validate() error {
	var errs []error
	for i, grain := range f.Grains {
		if grain.ID == "" || grain.UserID == "" {
			errs = append(errs, fmt.Errorf("grains[%d]: id and user_id are required", i))
		}
	}
	for i, token := range f.Tokens {
		if token.ID == "" || token.GrainID == "" {
			errs = append(errs, fmt.Errorf("tokens[%d]: id and grain_id are required", i))
		}
	}
	for i, info := range f.TokenInfo {
		if info.Token == "" {
			errs = append(errs, fmt.Errorf("token_info[%d]: token is required", i))
		}
	}
	for i, session := range f.Sessions {
		if session.ID == "" {
			errs = append(errs, fmt.Errorf("sessions[%d]: id is required", i))
		}
	}
	return errors.Join(errs...)
}
