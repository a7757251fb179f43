package users

import (
	"context"
	"fmt"
	"strings"
)

// DummyUserID is the reserved row whose envelope stands in for unknown usernames at login.
const DummyUserID int64 = 0

// User is a registered account. Only the canonical username and the opaque PAKE envelope are kept.
type User struct {
	ID           int64  `json:"id"`
	UspHex       string `json:"usp_hex"`
	PasswordFile []byte `json:"-"`
}

// Repo is the durable user store. Lookups that find nothing return errors.ErrNoRow;
// inserting a taken usp_hex or id returns errors.ErrRequiredExists.
type Repo interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUspHex(ctx context.Context, uspHex string) (*User, error)
	Insert(ctx context.Context, user *User) (int64, error)
	InsertWithID(ctx context.Context, user *User) error
}

// UspHex canonicalizes a username: bytes in [A-Za-z0-9_] are kept, every other byte is
// written as "~" followed by two lowercase hex digits.
func UspHex(username string) string {
	var b strings.Builder
	b.Grow(len(username))
	for i := 0; i < len(username); i++ {
		c := username[i]
		if isPlain(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "~%02x", c)
	}
	return b.String()
}

func isPlain(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}
