// Package types provides the records shared between the shell's domain
// packages, stores and transports.
//
// Store Records:
//   - Grain: a grain owned by a user
//   - Package / Manifest: installed app package metadata
//   - APIToken: a durable capability token held by a user
//   - TokenInfo: cached, pre-redemption metadata for a shared link
//   - SessionRecord: server-side state of an open session
//
// Remote Call Types:
//   - TokenRequest: open-by-token arguments
//   - Opened, Redirected: outcomes of an open call
//   - SessionEvent: change feed notification for one session
//
// Example Usage:
//
//	grain := &types.Grain{
//	    ID:        "g1",
//	    UserID:    "alice",
//	    PackageID: "pkg-notes",
//	    Title:     "Groceries",
//	}
package types
