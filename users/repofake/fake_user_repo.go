package fakeuserrepo

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users  map[int64]*users.User
	uspIDs map[string]int64 // usp_hex to user id
	nextID int64
	lock   sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:  make(map[int64]*users.User),
		uspIDs: make(map[string]int64),
		nextID: 1,
	}
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id int64) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, errors.ErrNoRow
	}
	return copyUser(u), nil
}

func (ur *FakeUserRepo) GetByUspHex(_ context.Context, uspHex string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.uspIDs[uspHex]
	if !ok {
		return nil, errors.ErrNoRow
	}
	return copyUser(ur.users[id]), nil
}

func (ur *FakeUserRepo) Insert(_ context.Context, user *users.User) (int64, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, taken := ur.uspIDs[user.UspHex]; taken {
		return 0, errors.ErrRequiredExists
	}
	id := ur.nextID
	ur.nextID++
	ur.store(id, user)
	return id, nil
}

func (ur *FakeUserRepo) InsertWithID(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, taken := ur.users[user.ID]; taken {
		return errors.ErrRequiredExists
	}
	if _, taken := ur.uspIDs[user.UspHex]; taken {
		return errors.ErrRequiredExists
	}
	ur.store(user.ID, user)
	if user.ID >= ur.nextID {
		ur.nextID = user.ID + 1
	}
	return nil
}

func (ur *FakeUserRepo) store(id int64, user *users.User) {
	stored := copyUser(user)
	stored.ID = id
	ur.users[id] = stored
	ur.uspIDs[stored.UspHex] = id
}

func copyUser(u *users.User) *users.User {
	c := *u
	c.PasswordFile = append([]byte(nil), u.PasswordFile...)
	return &c
}
