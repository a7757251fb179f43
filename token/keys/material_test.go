package keys_test

import (
	"context"
	"sync"
	"testing"

	"github.com/bytemare/opaque"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/token/keys"
	keyrepofake "github.com/jrsteele09/go-token-authority/token/keys/repofake"
	"github.com/stretchr/testify/require"
)

// racingRepo reports a missing row on the first Get and then loses the insert race.
type racingRepo struct {
	*keyrepofake.FakeKeyRepo
	winner *keys.Key
	once   sync.Once
}

func (r *racingRepo) Insert(ctx context.Context, key *keys.Key) error {
	r.once.Do(func() {
		_ = r.FakeKeyRepo.Insert(ctx, r.winner)
	})
	return r.FakeKeyRepo.Insert(ctx, key)
}

func TestMaterial_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := keyrepofake.NewFakeKeyRepo()
	m := keys.NewMaterial(repo)

	first, err := m.Get(ctx, keys.SigningKeyID)
	require.NoError(t, err)
	require.Equal(t, keys.AlgEd25519, first.Algorithm)

	second, err := m.Get(ctx, keys.SigningKeyID)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestMaterial_ConcurrentCreateKeepsExistingKey(t *testing.T) {
	ctx := context.Background()
	winner, err := keys.GenerateSymmetricKey(keys.RefreshKeyID)
	require.NoError(t, err)

	repo := &racingRepo{FakeKeyRepo: keyrepofake.NewFakeKeyRepo(), winner: winner}
	m := keys.NewMaterial(repo)

	got, err := m.Get(ctx, keys.RefreshKeyID)
	require.NoError(t, err)
	require.Equal(t, winner.Private, got.Private)

	stored, err := repo.Get(ctx, keys.RefreshKeyID)
	require.NoError(t, err)
	require.Equal(t, winner.Private, stored.Private)
}

func TestMaterial_ParallelFirstAccess(t *testing.T) {
	ctx := context.Background()
	m := keys.NewMaterial(keyrepofake.NewFakeKeyRepo())

	const workers = 8
	results := make([][]byte, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k, err := m.RefreshKey(ctx)
			if err == nil {
				results[i] = k
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		require.Len(t, results[i], 32)
		require.Equal(t, results[0], results[i])
	}
}

func TestMaterial_UnknownID(t *testing.T) {
	m := keys.NewMaterial(keyrepofake.NewFakeKeyRepo())
	_, err := m.Get(context.Background(), 42)
	require.Error(t, err)
	require.False(t, errors.Is(err, errors.ErrNoRow))
}

func TestMaterial_KeyShapes(t *testing.T) {
	ctx := context.Background()
	m := keys.NewMaterial(keyrepofake.NewFakeKeyRepo())
	require.NoError(t, m.Provision(ctx))

	private, err := m.PakePrivateKey(ctx)
	require.NoError(t, err)
	public, err := m.PakePublicKey(ctx)
	require.NoError(t, err)
	conf := opaque.DefaultConfiguration()
	server, err := conf.Server()
	require.NoError(t, err)
	require.NoError(t, server.SetKeyMaterial(nil, private, public, conf.GenerateOPRFSeed()))

	pemKey, kid, err := m.SigningKey(ctx)
	require.NoError(t, err)
	require.Equal(t, keys.SigningKeyID, kid)
	_, err = jwt.ParseEdPrivateKeyFromPEM(pemKey)
	require.NoError(t, err)

	jwks, err := m.JWKS(ctx)
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "Ed25519", jwks.Keys[0].Crv)
	require.Equal(t, "1", jwks.Keys[0].Kid)
}
