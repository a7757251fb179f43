package keys

import (
	"context"

	"github.com/jrsteele09/go-token-authority/internal/errors"
	pkgerrors "github.com/pkg/errors"
)

// Repo is the durable key store. Get returns errors.ErrNoRow for a missing id and
// Insert returns errors.ErrRequiredExists when the id is already taken.
type Repo interface {
	Get(ctx context.Context, id int64) (*Key, error)
	Insert(ctx context.Context, key *Key) error
}

type generator func(id int64) (*Key, error)

// Material hands out the singleton key rows, provisioning each on first access.
type Material struct {
	repo       Repo
	generators map[int64]generator
}

func NewMaterial(repo Repo) *Material {
	return &Material{
		repo: repo,
		generators: map[int64]generator{
			PakeKeyID:    GenerateOpaqueKey,
			SigningKeyID: GenerateEd25519Key,
			RefreshKeyID: GenerateSymmetricKey,
		},
	}
}

// Get returns key row id, creating it if absent. A concurrent creator winning the
// insert is tolerated by re-reading its row.
func (m *Material) Get(ctx context.Context, id int64) (*Key, error) {
	key, err := m.repo.Get(ctx, id)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, errors.ErrNoRow) {
		return nil, pkgerrors.Wrapf(err, "[Material.Get] key %d", id)
	}

	generate, ok := m.generators[id]
	if !ok {
		return nil, pkgerrors.Errorf("[Material.Get] no generator for key %d", id)
	}
	key, err = generate(id)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "[Material.Get] generate key %d", id)
	}

	err = m.repo.Insert(ctx, key)
	if errors.Is(err, errors.ErrRequiredExists) {
		key, err = m.repo.Get(ctx, id)
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "[Material.Get] persist key %d", id)
	}
	return key, nil
}

// Provision creates every well-known key that does not exist yet.
func (m *Material) Provision(ctx context.Context) error {
	for _, id := range []int64{PakeKeyID, SigningKeyID, RefreshKeyID} {
		if _, err := m.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (m *Material) PakePrivateKey(ctx context.Context) ([]byte, error) {
	key, err := m.Get(ctx, PakeKeyID)
	if err != nil {
		return nil, err
	}
	return key.PrivateBytes()
}

func (m *Material) PakePublicKey(ctx context.Context) ([]byte, error) {
	key, err := m.Get(ctx, PakeKeyID)
	if err != nil {
		return nil, err
	}
	return key.PublicBytes()
}

// SigningKey returns the PEM encoded Ed25519 private key and its row id.
func (m *Material) SigningKey(ctx context.Context) ([]byte, int64, error) {
	key, err := m.Get(ctx, SigningKeyID)
	if err != nil {
		return nil, 0, err
	}
	return []byte(key.Private), key.ID, nil
}

func (m *Material) RefreshKey(ctx context.Context) ([]byte, error) {
	key, err := m.Get(ctx, RefreshKeyID)
	if err != nil {
		return nil, err
	}
	return key.PrivateBytes()
}

// JWKS publishes the token-signing public key.
func (m *Material) JWKS(ctx context.Context) (*JWKS, error) {
	key, err := m.Get(ctx, SigningKeyID)
	if err != nil {
		return nil, err
	}
	jwk, err := key.ToJWK()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Material.JWKS] ToJWK")
	}
	return &JWKS{Keys: []JWK{*jwk}}, nil
}
