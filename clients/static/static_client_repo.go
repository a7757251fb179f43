package staticclientrepo

import (
	"context"
	"sort"

	"github.com/jrsteele09/go-token-authority/clients"
	"github.com/jrsteele09/go-token-authority/internal/errors"
)

var _ clients.Repo = (*StaticClientRepo)(nil)

// StaticClientRepo is a registry loaded once from configuration. It is never written
// afterwards, so reads need no locking.
type StaticClientRepo struct {
	clients map[string]*clients.Client
}

// NewStaticClientRepo builds the registry from a client id to redirect URI mapping.
func NewStaticClientRepo(registered map[string][]string) *StaticClientRepo {
	r := &StaticClientRepo{
		clients: make(map[string]*clients.Client, len(registered)),
	}
	for id, uris := range registered {
		r.clients[id] = &clients.Client{ID: id, RedirectURIs: append([]string(nil), uris...)}
	}
	return r
}

func (r *StaticClientRepo) Get(_ context.Context, clientID string) (*clients.Client, error) {
	client, ok := r.clients[clientID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownClient, "client %q", clientID)
	}
	return client, nil
}

func (r *StaticClientRepo) Open() bool {
	return len(r.clients) == 0
}

// List returns the registered clients ordered by id.
func (r *StaticClientRepo) List() []*clients.Client {
	list := make([]*clients.Client, 0, len(r.clients))
	for _, c := range r.clients {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}
