package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"

	"github.com/bytemare/opaque"
)

// Well-known key rows. Each is created on first read and never changed afterwards.
const (
	PakeKeyID    int64 = 0
	SigningKeyID int64 = 1
	RefreshKeyID int64 = 2
)

const (
	AlgRistretto255 = "ristretto255-sha512"
	AlgEd25519      = "EdDSA"
	AlgAES256GCM    = "aes256gcm"

	FormatRaw   = "raw"
	FormatPKCS8 = "pkcs8"
	FormatSPKI  = "spki"

	EncodingBase64URL = "base64url"
	EncodingPEM       = "pem"
)

// Key is one stored key row.
type Key struct {
	ID              int64
	Algorithm       string
	Public          string
	Private         string
	PublicFormat    string
	PublicEncoding  string
	PrivateFormat   string
	PrivateEncoding string
}

// JWKS represents a JSON Web Key Set
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents an OKP JSON Web Key
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	Use string `json:"use,omitempty"`
	Kid string `json:"kid,omitempty"`
	Alg string `json:"alg,omitempty"`
	X   string `json:"x"`
}

// GenerateOpaqueKey generates the PAKE server key pair in the AKE group of the default
// OPAQUE configuration.
func GenerateOpaqueKey(id int64) (*Key, error) {
	private, public := opaque.DefaultConfiguration().KeyGen()
	if len(private) == 0 || len(public) == 0 {
		return nil, fmt.Errorf("failed to generate %s key pair", AlgRistretto255)
	}
	return &Key{
		ID:              id,
		Algorithm:       AlgRistretto255,
		Public:          base64.RawURLEncoding.EncodeToString(public),
		Private:         base64.RawURLEncoding.EncodeToString(private),
		PublicFormat:    FormatRaw,
		PublicEncoding:  EncodingBase64URL,
		PrivateFormat:   FormatRaw,
		PrivateEncoding: EncodingBase64URL,
	}, nil
}

// GenerateEd25519Key generates the token-signing key pair, PEM encoded.
func GenerateEd25519Key(id int64) (*Key, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
	}

	privateDER, err := x509.MarshalPKCS8PrivateKey(private)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	publicDER, err := x509.MarshalPKIXPublicKey(public)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}

	return &Key{
		ID:              id,
		Algorithm:       AlgEd25519,
		Public:          string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})),
		Private:         string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privateDER})),
		PublicFormat:    FormatSPKI,
		PublicEncoding:  EncodingPEM,
		PrivateFormat:   FormatPKCS8,
		PrivateEncoding: EncodingPEM,
	}, nil
}

// GenerateSymmetricKey generates a 256-bit key for sealing refresh handles.
func GenerateSymmetricKey(id int64) (*Key, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate symmetric key: %w", err)
	}
	return &Key{
		ID:              id,
		Algorithm:       AlgAES256GCM,
		Private:         base64.RawURLEncoding.EncodeToString(secret),
		PrivateFormat:   FormatRaw,
		PrivateEncoding: EncodingBase64URL,
	}, nil
}

// PrivateBytes decodes the private half of a base64url-encoded key.
func (k *Key) PrivateBytes() ([]byte, error) {
	return decodeRaw(k.Private, k.PrivateEncoding)
}

// PublicBytes decodes the public half of a base64url-encoded key.
func (k *Key) PublicBytes() ([]byte, error) {
	return decodeRaw(k.Public, k.PublicEncoding)
}

func decodeRaw(value, encoding string) ([]byte, error) {
	if encoding != EncodingBase64URL {
		return nil, fmt.Errorf("key encoding %q is not base64url", encoding)
	}
	return base64.RawURLEncoding.DecodeString(value)
}

// ToJWK converts an Ed25519 signing key to its public JWK
func (k *Key) ToJWK() (*JWK, error) {
	if k.Algorithm != AlgEd25519 {
		return nil, fmt.Errorf("unsupported key algorithm %q", k.Algorithm)
	}
	block, _ := pem.Decode([]byte(k.Public))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	public, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not ed25519")
	}
	return &JWK{
		Kty: "OKP",
		Crv: "Ed25519",
		Use: "sig",
		Kid: fmt.Sprint(k.ID),
		Alg: AlgEd25519,
		X:   base64.RawURLEncoding.EncodeToString(public),
	}, nil
}
