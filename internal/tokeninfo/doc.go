// Package tokeninfo fetches the anonymous metadata of sharing tokens.
//
// GET {base}/{token} returns the token's TokenInfo as JSON: who issued it
// and display metadata for its grain. Results are written to the store's
// token-info cache, where the grain view reads them. Requests retry on
// transient errors (hashicorp/go-retryablehttp), are rate limited and are
// deduplicated per token.
package tokeninfo
