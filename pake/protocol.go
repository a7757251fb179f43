// Package pake runs the password-authenticated key exchange flows for login and
// registration. The exchange itself is delegated to a Protocol implementation; this
// package owns the user lookup, the transient flow state and the hand-off to the
// authorization flow.
package pake

// ServerKey is the server's long-term PAKE key pair in the protocol's own encoding.
type ServerKey struct {
	Private []byte
	Public  []byte
}

// Protocol is the PAKE capability over opaque byte-string messages.
//
// StartLogin answers the client's first login message using the stored password file,
// returning the reply and server state to keep until the finish step. FinishLogin
// verifies the client's final message and yields the shared session key. StartRegister
// and FinishRegister follow the same shape and produce the password file to persist.
//
// credentialID is stable per username across registration and every later login. It is
// also passed for unknown usernames, whose password file is the dummy user's.
type Protocol interface {
	StartLogin(credentialID, passwordFile, clientMessage []byte, key ServerKey) (serverMessage, state []byte, err error)
	FinishLogin(state, clientMessage []byte) (sessionKey []byte, err error)
	StartRegister(credentialID, clientMessage []byte, key ServerKey) (serverMessage, state []byte, err error)
	FinishRegister(state, clientMessage []byte) (passwordFile []byte, err error)
}
