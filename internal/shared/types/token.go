package types

import "time"

// TokenOwner is the per-user annotation attached to a token redeemed by a user
type TokenOwner struct {
	UserID   string         `json:"user_id" yaml:"user_id"`
	Title    string         `json:"title" yaml:"title"`
	Metadata *GrainMetadata `json:"denormalized_grain_metadata,omitempty" yaml:"metadata,omitempty"`
}

// APIToken is a durable capability token record.
// UserID is the principal that issued the token; Owner is the user holding it.
type APIToken struct {
	ID        string      `json:"id" yaml:"id"`
	GrainID   string      `json:"grain_id" yaml:"grain_id"`
	UserID    string      `json:"user_id" yaml:"user_id"`
	ObjectID  string      `json:"object_id,omitempty" yaml:"object_id,omitempty"`
	Owner     *TokenOwner `json:"owner,omitempty" yaml:"owner,omitempty"`
	CreatedAt time.Time   `json:"created_at" yaml:"created_at"`
}

// OwnerUserID returns the holder of the token, or "" if nobody redeemed it
func (t *APIToken) OwnerUserID() string {
	if t == nil || t.Owner == nil {
		return ""
	}
	return t.Owner.UserID
}

// TokenIssuer identifies the token behind a shared link
type TokenIssuer struct {
	ID     string `json:"id" yaml:"id"`
	UserID string `json:"user_id" yaml:"user_id"`
}

// TokenInfo is the anonymous, pre-redemption view of a shared link
type TokenInfo struct {
	Token         string         `json:"token" yaml:"token"`
	APIToken      *TokenIssuer   `json:"api_token,omitempty" yaml:"api_token,omitempty"`
	GrainMetadata *GrainMetadata `json:"grain_metadata,omitempty" yaml:"grain_metadata,omitempty"`
}
