package clients

import "context"

// Repo looks up registered clients. Get returns errors.ErrUnknownClient for an id that
// is not registered. Open reports whether the registry is empty, in which case any
// client id and redirect URI is accepted.
type Repo interface {
	Get(ctx context.Context, clientID string) (*Client, error)
	Open() bool
}
