package grainview

import (
	"net/url"
	"strings"
)

// Route names
const (
	RouteGrain  = "grain"
	RouteShared = "shared"
)

// DeepLink is the within-grain location captured from the original navigation
type DeepLink struct {
	Path  string `json:"path,omitempty"`
	Query string `json:"query,omitempty"`
	Hash  string `json:"hash,omitempty"`
}

// Route is a navigation target
type Route struct {
	Name    string
	GrainID string
	Token   string
	Link    DeepLink
}

// Base returns the route path without the deep link
func (r Route) Base() string {
	if r.Name == RouteShared {
		return "/shared/" + url.PathEscape(r.Token)
	}
	return "/grain/" + url.PathEscape(r.GrainID)
}

// URL returns the full route including path, query and hash
func (r Route) URL() string {
	var sb strings.Builder
	sb.WriteString(r.Base())
	if p := strings.TrimPrefix(r.Link.Path, "/"); p != "" {
		sb.WriteString("/")
		sb.WriteString(p)
	}
	if q := strings.TrimPrefix(r.Link.Query, "?"); q != "" {
		sb.WriteString("?")
		sb.WriteString(q)
	}
	if h := strings.TrimPrefix(r.Link.Hash, "#"); h != "" {
		sb.WriteString("#")
		sb.WriteString(h)
	}
	return sb.String()
}
