package opaque_test

import (
	"crypto/rand"
	"testing"

	bytemare "github.com/bytemare/opaque"
	"github.com/jrsteele09/go-token-authority/pake"
	"github.com/jrsteele09/go-token-authority/pake/opaque"
	"github.com/jrsteele09/go-token-authority/token/keys"
	"github.com/stretchr/testify/require"
)

const (
	credentialID = "6a0f3c"
	password     = "correct horse"
)

func serverKey(t *testing.T) pake.ServerKey {
	t.Helper()
	key, err := keys.GenerateOpaqueKey(keys.PakeKeyID)
	require.NoError(t, err)
	private, err := key.PrivateBytes()
	require.NoError(t, err)
	public, err := key.PublicBytes()
	require.NoError(t, err)
	return pake.ServerKey{Private: private, Public: public}
}

func newClient(t *testing.T) *bytemare.Client {
	t.Helper()
	client, err := bytemare.DefaultConfiguration().Client()
	require.NoError(t, err)
	return client
}

func register(t *testing.T, p *opaque.Protocol, key pake.ServerKey, credentialID, password string) []byte {
	t.Helper()
	client := newClient(t)

	serverMessage, state, err := p.StartRegister([]byte(credentialID), client.RegistrationInit([]byte(password)).Serialize(), key)
	require.NoError(t, err)
	response, err := client.Deserialize.RegistrationResponse(serverMessage)
	require.NoError(t, err)
	record, _ := client.RegistrationFinalize(response)

	passwordFile, err := p.FinishRegister(state, record.Serialize())
	require.NoError(t, err)
	return passwordFile
}

// startLogin runs the client side up to KE3. It returns a nil KE3 when the client
// cannot open the server's response.
func startLogin(t *testing.T, p *opaque.Protocol, key pake.ServerKey, credentialID string, passwordFile []byte, password string) (state, ke3, clientKey []byte) {
	t.Helper()
	client := newClient(t)

	serverMessage, state, err := p.StartLogin([]byte(credentialID), passwordFile, client.LoginInit([]byte(password)).Serialize(), key)
	require.NoError(t, err)
	ke2, err := client.Deserialize.KE2(serverMessage)
	require.NoError(t, err)
	finish, _, err := client.LoginFinish(ke2)
	if err != nil {
		return state, nil, nil
	}
	return state, finish.Serialize(), client.SessionKey()
}

func TestProtocol_RegisterThenLogin(t *testing.T) {
	p := opaque.NewProtocol()
	key := serverKey(t)
	passwordFile := register(t, p, key, credentialID, password)
	require.Len(t, passwordFile, 192)

	state, ke3, clientKey := startLogin(t, p, key, credentialID, passwordFile, password)
	require.NotNil(t, ke3)

	sessionKey, err := p.FinishLogin(state, ke3)
	require.NoError(t, err)
	require.Equal(t, clientKey, sessionKey)
}

func TestProtocol_WrongPassword(t *testing.T) {
	p := opaque.NewProtocol()
	key := serverKey(t)
	passwordFile := register(t, p, key, credentialID, password)

	state, ke3, _ := startLogin(t, p, key, credentialID, passwordFile, "wrong")
	require.Nil(t, ke3)

	forged := make([]byte, 64)
	_, err := rand.Read(forged)
	require.NoError(t, err)
	_, err = p.FinishLogin(state, forged)
	require.Error(t, err)
}

func TestProtocol_CredentialIDIsBound(t *testing.T) {
	p := opaque.NewProtocol()
	key := serverKey(t)
	passwordFile := register(t, p, key, credentialID, password)

	_, ke3, _ := startLogin(t, p, key, "someone-else", passwordFile, password)
	require.Nil(t, ke3)
}

func TestProtocol_DummyFileAnswersLikeARecord(t *testing.T) {
	p := opaque.NewProtocol()
	key := serverKey(t)
	passwordFile := register(t, p, key, credentialID, password)

	dummy := make([]byte, len(passwordFile))
	_, err := rand.Read(dummy)
	require.NoError(t, err)

	client := newClient(t)
	ke1 := client.LoginInit([]byte(password)).Serialize()
	known, _, err := p.StartLogin([]byte(credentialID), passwordFile, ke1, key)
	require.NoError(t, err)
	fake, state, err := p.StartLogin([]byte("nobody"), dummy, ke1, key)
	require.NoError(t, err)
	require.Len(t, fake, len(known))
	require.NotEmpty(t, state)
}

func TestProtocol_MalformedMessages(t *testing.T) {
	p := opaque.NewProtocol()
	key := serverKey(t)

	_, _, err := p.StartRegister([]byte(credentialID), []byte("short"), key)
	require.Error(t, err)

	_, err = p.FinishRegister(nil, []byte("short"))
	require.Error(t, err)

	_, _, err = p.StartLogin([]byte(credentialID), nil, []byte("short"), key)
	require.Error(t, err)

	_, err = p.FinishLogin([]byte("short"), make([]byte, 64))
	require.Error(t, err)
}

func TestProtocol_RejectsForeignKey(t *testing.T) {
	p := opaque.NewProtocol()
	client := newClient(t)
	_, _, err := p.StartRegister([]byte(credentialID), client.RegistrationInit([]byte(password)).Serialize(), pake.ServerKey{Private: make([]byte, 32), Public: make([]byte, 32)})
	require.Error(t, err)
}
