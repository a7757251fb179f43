package keyrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/token/keys"
)

var _ keys.Repo = (*FakeKeyRepo)(nil)

type FakeKeyRepo struct {
	keys map[int64]keys.Key
	lock sync.RWMutex
}

func NewFakeKeyRepo() *FakeKeyRepo {
	return &FakeKeyRepo{keys: make(map[int64]keys.Key)}
}

func (kr *FakeKeyRepo) Get(_ context.Context, id int64) (*keys.Key, error) {
	kr.lock.RLock()
	defer kr.lock.RUnlock()

	k, ok := kr.keys[id]
	if !ok {
		return nil, errors.ErrNoRow
	}
	return &k, nil
}

func (kr *FakeKeyRepo) Insert(_ context.Context, key *keys.Key) error {
	kr.lock.Lock()
	defer kr.lock.Unlock()

	if _, ok := kr.keys[key.ID]; ok {
		return errors.ErrRequiredExists
	}
	kr.keys[key.ID] = *key
	return nil
}
