package refresh

import "context"

// SavedRefreshToken is one link of a refresh chain. AccessValue and IDTokenValue hold
// untimed claim templates; Iat and Exp are unix seconds for the link itself.
type SavedRefreshToken struct {
	ID           int64
	FamilyID     string
	AccessValue  string
	IDTokenValue string
	Iat          int64
	Exp          int64
	Nonce        string
}

// Repo is the durable refresh chain store.
//
// Get and Delete report errors.ErrNoRow when the id does not exist. Replace deletes oldID
// and inserts next in a single transaction and reports errors.ErrNoRow, leaving nothing
// changed, when oldID was already gone.
type Repo interface {
	Get(ctx context.Context, id int64) (*SavedRefreshToken, error)
	Insert(ctx context.Context, token *SavedRefreshToken) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteFamily(ctx context.Context, familyID string) error
	Replace(ctx context.Context, oldID int64, next *SavedRefreshToken) (int64, error)
}
