package refreshrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	tokens map[int64]refresh.SavedRefreshToken
	nextID int64
	lock   sync.RWMutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		tokens: make(map[int64]refresh.SavedRefreshToken),
		nextID: 1,
	}
}

func (tr *FakeRefreshTokenRepo) Get(_ context.Context, id int64) (*refresh.SavedRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	t, ok := tr.tokens[id]
	if !ok {
		return nil, errors.ErrNoRow
	}
	return &t, nil
}

func (tr *FakeRefreshTokenRepo) Insert(_ context.Context, token *refresh.SavedRefreshToken) (int64, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	return tr.insert(token), nil
}

func (tr *FakeRefreshTokenRepo) Delete(_ context.Context, id int64) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if _, ok := tr.tokens[id]; !ok {
		return errors.ErrNoRow
	}
	delete(tr.tokens, id)
	return nil
}

func (tr *FakeRefreshTokenRepo) DeleteFamily(_ context.Context, familyID string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	for id, t := range tr.tokens {
		if t.FamilyID == familyID {
			delete(tr.tokens, id)
		}
	}
	return nil
}

func (tr *FakeRefreshTokenRepo) Replace(_ context.Context, oldID int64, next *refresh.SavedRefreshToken) (int64, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if _, ok := tr.tokens[oldID]; !ok {
		return 0, errors.ErrNoRow
	}
	delete(tr.tokens, oldID)
	return tr.insert(next), nil
}

// Family lists the links of one family, for assertions.
func (tr *FakeRefreshTokenRepo) Family(familyID string) []refresh.SavedRefreshToken {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	var links []refresh.SavedRefreshToken
	for _, t := range tr.tokens {
		if t.FamilyID == familyID {
			links = append(links, t)
		}
	}
	return links
}

func (tr *FakeRefreshTokenRepo) insert(token *refresh.SavedRefreshToken) int64 {
	id := tr.nextID
	tr.nextID++
	stored := *token
	stored.ID = id
	tr.tokens[id] = stored
	return id
}
