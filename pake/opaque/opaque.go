// Package opaque runs the login and registration exchanges over OPAQUE in its default
// ristretto255-SHA512 configuration.
//
// The server key pair is the one produced by keys.GenerateOpaqueKey. The OPRF seed is
// derived from the private key, so the key row is the only secret to keep.
package opaque

import (
	"crypto/sha512"
	"io"

	bytemare "github.com/bytemare/opaque"
	"github.com/jrsteele09/go-token-authority/pake"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

var _ pake.Protocol = (*Protocol)(nil)

const oprfSeedInfo = "token-authority/opaque/oprf-seed"

type Protocol struct {
	conf *bytemare.Configuration
}

func NewProtocol() *Protocol {
	return &Protocol{conf: bytemare.DefaultConfiguration()}
}

// StartLogin answers a KE1 with a KE2. A password file that is not a registration record,
// such as the dummy user's, is replaced by a fake record so the reply is shaped the same.
func (p *Protocol) StartLogin(credentialID, passwordFile, clientMessage []byte, key pake.ServerKey) ([]byte, []byte, error) {
	server, _, err := p.server(key)
	if err != nil {
		return nil, nil, err
	}
	ke1, err := server.Deserialize.KE1(clientMessage)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "[Protocol.StartLogin] KE1")
	}
	record, err := p.clientRecord(server, credentialID, passwordFile)
	if err != nil {
		return nil, nil, err
	}
	ke2, err := server.LoginInit(ke1, record)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "[Protocol.StartLogin] LoginInit")
	}
	return ke2.Serialize(), server.SerializeState(), nil
}

// FinishLogin checks the client MAC in KE3 against the saved state.
func (p *Protocol) FinishLogin(state, clientMessage []byte) ([]byte, error) {
	server, err := p.conf.Server()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Protocol.FinishLogin] server")
	}
	if err := server.SetAKEState(state); err != nil {
		return nil, pkgerrors.Wrap(err, "[Protocol.FinishLogin] state")
	}
	ke3, err := server.Deserialize.KE3(clientMessage)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Protocol.FinishLogin] KE3")
	}
	if err := server.LoginFinish(ke3); err != nil {
		return nil, pkgerrors.Wrap(err, "[Protocol.FinishLogin] LoginFinish")
	}
	return server.SessionKey(), nil
}

// StartRegister evaluates the blinded password under the credential's OPRF key. No
// server state is needed for the finish step.
func (p *Protocol) StartRegister(credentialID, clientMessage []byte, key pake.ServerKey) ([]byte, []byte, error) {
	server, seed, err := p.server(key)
	if err != nil {
		return nil, nil, err
	}
	request, err := server.Deserialize.RegistrationRequest(clientMessage)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "[Protocol.StartRegister] request")
	}
	pks, err := server.Deserialize.DecodeAkePublicKey(key.Public)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "[Protocol.StartRegister] public key")
	}
	response := server.RegistrationResponse(request, pks, credentialID, seed)
	return response.Serialize(), nil, nil
}

// FinishRegister validates the client's registration record, which is the password file.
func (p *Protocol) FinishRegister(_, clientMessage []byte) ([]byte, error) {
	deserializer, err := p.conf.Deserializer()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Protocol.FinishRegister] deserializer")
	}
	record, err := deserializer.RegistrationRecord(clientMessage)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Protocol.FinishRegister] record")
	}
	return record.Serialize(), nil
}

func (p *Protocol) server(key pake.ServerKey) (*bytemare.Server, []byte, error) {
	server, err := p.conf.Server()
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "[Protocol.server] new")
	}
	seed, err := p.oprfSeed(key.Private)
	if err != nil {
		return nil, nil, err
	}
	if err := server.SetKeyMaterial(nil, key.Private, key.Public, seed); err != nil {
		return nil, nil, pkgerrors.Wrap(err, "[Protocol.server] key material")
	}
	return server, seed, nil
}

func (p *Protocol) oprfSeed(private []byte) ([]byte, error) {
	seed := make([]byte, p.conf.Hash.Size())
	if _, err := io.ReadFull(hkdf.New(sha512.New, private, nil, []byte(oprfSeedInfo)), seed); err != nil {
		return nil, pkgerrors.Wrap(err, "[Protocol.oprfSeed] hkdf")
	}
	return seed, nil
}

func (p *Protocol) clientRecord(server *bytemare.Server, credentialID, passwordFile []byte) (*bytemare.ClientRecord, error) {
	record, err := server.Deserialize.RegistrationRecord(passwordFile)
	if err != nil {
		fake, err := p.conf.GetFakeRecord(credentialID)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "[Protocol.clientRecord] fake record")
		}
		return fake, nil
	}
	return &bytemare.ClientRecord{CredentialIdentifier: credentialID, RegistrationRecord: record}, nil
}
