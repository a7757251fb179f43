// Package pakefake is a deterministic stand-in for a PAKE protocol. It provides no
// security and exists so flows and handlers can be exercised end to end in tests.
//
// The client's login and registration start messages carry the raw password. The
// password file is SHA-256(password), the login server message is a random salt and
// the session key is SHA-256(password file || salt).
package pakefake

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-token-authority/pake"
)

var _ pake.Protocol = (*FakeProtocol)(nil)

// FinishMessage is the client's final message for either flow.
var FinishMessage = []byte("finish")

type FakeProtocol struct{}

func NewFakeProtocol() *FakeProtocol {
	return &FakeProtocol{}
}

type loginState struct {
	File    []byte `json:"file"`
	Attempt []byte `json:"attempt"`
	Salt    []byte `json:"salt"`
}

func (p *FakeProtocol) StartLogin(_, passwordFile, clientMessage []byte, key pake.ServerKey) ([]byte, []byte, error) {
	if len(key.Private) == 0 {
		return nil, nil, fmt.Errorf("missing server key")
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}
	attempt := sha256.Sum256(clientMessage)
	state, err := json.Marshal(loginState{File: passwordFile, Attempt: attempt[:], Salt: salt})
	if err != nil {
		return nil, nil, err
	}
	return salt, state, nil
}

func (p *FakeProtocol) FinishLogin(state, clientMessage []byte) ([]byte, error) {
	var s loginState
	if err := json.Unmarshal(state, &s); err != nil {
		return nil, err
	}
	if !bytes.Equal(clientMessage, FinishMessage) || !bytes.Equal(s.File, s.Attempt) {
		return nil, fmt.Errorf("authentication failed")
	}
	return sessionKey(s.File, s.Salt), nil
}

func (p *FakeProtocol) StartRegister(_, clientMessage []byte, key pake.ServerKey) ([]byte, []byte, error) {
	if len(key.Public) == 0 {
		return nil, nil, fmt.Errorf("missing server key")
	}
	return key.Public, clientMessage, nil
}

func (p *FakeProtocol) FinishRegister(state, clientMessage []byte) ([]byte, error) {
	if !bytes.Equal(clientMessage, FinishMessage) {
		return nil, fmt.Errorf("unexpected finish message")
	}
	file := sha256.Sum256(state)
	return file[:], nil
}

// SessionKey is the key a client holding password derives from the login server message.
func SessionKey(password string, serverMessage []byte) []byte {
	file := sha256.Sum256([]byte(password))
	return sessionKey(file[:], serverMessage)
}

func sessionKey(file, salt []byte) []byte {
	sum := sha256.Sum256(append(append([]byte{}, file...), salt...))
	return sum[:]
}
