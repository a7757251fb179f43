package pake

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/jrsteele09/go-token-authority/internal/config"
	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/internal/utils"
	"github.com/jrsteele09/go-token-authority/kv"
	"github.com/jrsteele09/go-token-authority/oauth2"
	"github.com/jrsteele09/go-token-authority/users"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DummyUspHex names the dummy user row. The "~du" sequence can never come out of
// users.UspHex, so no real username collides with it.
const DummyUspHex = "~dummy"

const dummyPasswordFileSize = 192

// KeySource supplies the server's PAKE key pair.
type KeySource interface {
	PakePrivateKey(ctx context.Context) ([]byte, error)
	PakePublicKey(ctx context.Context) ([]byte, error)
}

// flowState is what survives between a start and a finish call.
type flowState struct {
	UspHex string `json:"usp_hex"`
	State  []byte `json:"state"`
}

// Flow runs login and registration exchanges.
type Flow struct {
	protocol Protocol
	users    users.Repo
	keys     KeySource
	cache    kv.Store
	config   config.OAuthConfig
	nowTime  func() time.Time
}

// FlowOption defines a function type to modify the Flow instance.
type FlowOption func(*Flow)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) FlowOption {
	return func(f *Flow) {
		f.nowTime = nowFunc
	}
}

func NewFlow(protocol Protocol, userRepo users.Repo, keys KeySource, cache kv.Store, cfg config.OAuthConfig, options ...FlowOption) (*Flow, error) {
	if protocol == nil {
		return nil, errors.ErrPakeUnavailable
	}
	if userRepo == nil {
		return nil, pkgerrors.New("[NewFlow] users repo is required")
	}
	if keys == nil {
		return nil, pkgerrors.New("[NewFlow] key source is required")
	}
	if cache == nil {
		return nil, pkgerrors.New("[NewFlow] cache is required")
	}
	if cfg == nil {
		return nil, pkgerrors.New("[NewFlow] config is required")
	}

	f := &Flow{
		protocol: protocol,
		users:    userRepo,
		keys:     keys,
		cache:    cache,
		config:   cfg,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(f)
	}
	return f, nil
}

// EnsureDummyUser creates the row whose envelope stands in for unknown usernames.
func EnsureDummyUser(ctx context.Context, repo users.Repo) error {
	if _, err := repo.GetByID(ctx, users.DummyUserID); err == nil {
		return nil
	} else if !errors.Is(err, errors.ErrNoRow) {
		return pkgerrors.Wrap(err, "[EnsureDummyUser] lookup")
	}

	envelope := make([]byte, dummyPasswordFileSize)
	if _, err := rand.Read(envelope); err != nil {
		return pkgerrors.Wrap(err, "[EnsureDummyUser] rand.Read")
	}
	err := repo.InsertWithID(ctx, &users.User{ID: users.DummyUserID, UspHex: DummyUspHex, PasswordFile: envelope})
	if err != nil && !errors.Is(err, errors.ErrRequiredExists) {
		return pkgerrors.Wrap(err, "[EnsureDummyUser] insert")
	}
	return nil
}

// StartLogin answers the first login message. An unknown username is served with the
// dummy user's envelope so the reply looks the same either way.
func (f *Flow) StartLogin(ctx context.Context, req oauth2.PasswordRequest) (*oauth2.PasswordResponse, error) {
	clientMessage, err := decodeMessage(req.ClientRequest)
	if err != nil {
		return nil, err
	}
	usp := users.UspHex(req.Username)

	user, err := f.users.GetByUspHex(ctx, usp)
	if errors.Is(err, errors.ErrNoRow) {
		user, err = f.users.GetByID(ctx, users.DummyUserID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Flow.StartLogin] user lookup")
	}

	key, err := f.serverKey(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Flow.StartLogin] pake key")
	}
	serverMessage, state, err := f.protocol.StartLogin([]byte(usp), user.PasswordFile, clientMessage, key)
	if err != nil {
		log.Info().Err(err).Str("usp_hex", usp).Msg("login start rejected")
		return nil, errors.ErrInvalidRequest
	}
	return f.saveState(ctx, usp, serverMessage, state)
}

// FinishLogin completes a login and binds the resulting session to flowID. The client
// derives the same session key, and its hex form is the authorization code it presents
// on the callback.
func (f *Flow) FinishLogin(ctx context.Context, req oauth2.FinishLogin) error {
	if req.FlowID == "" {
		return errors.Wrapf(errors.ErrInvalidRequest, "flow_id is required")
	}
	clientMessage, err := decodeMessage(req.ClientFinish)
	if err != nil {
		return err
	}
	saved, err := f.loadState(ctx, req.AuthID, req.Username)
	if err != nil {
		return err
	}

	sessionKey, err := f.protocol.FinishLogin(saved.State, clientMessage)
	if err != nil {
		log.Info().Err(err).Str("usp_hex", saved.UspHex).Msg("login finish rejected")
		return errors.ErrInvalidRequest
	}

	code := hex.EncodeToString(sessionKey)
	if err := f.cache.Put(ctx, kv.CodeKey(code), oauth2.FlowUser{
		FlowID:   req.FlowID,
		UspHex:   saved.UspHex,
		AuthTime: f.nowTime().Unix(),
	}, f.config.GetLoginFlowTTL()); err != nil {
		return pkgerrors.Wrap(err, "[Flow.FinishLogin] store code")
	}
	return nil
}

// StartRegister answers the first registration message for a username not yet taken.
func (f *Flow) StartRegister(ctx context.Context, req oauth2.PasswordRequest) (*oauth2.PasswordResponse, error) {
	clientMessage, err := decodeMessage(req.ClientRequest)
	if err != nil {
		return nil, err
	}
	usp := users.UspHex(req.Username)

	_, err = f.users.GetByUspHex(ctx, usp)
	if err == nil {
		return nil, errors.ErrUserExists
	}
	if !errors.Is(err, errors.ErrNoRow) {
		return nil, pkgerrors.Wrap(err, "[Flow.StartRegister] user lookup")
	}

	key, err := f.serverKey(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Flow.StartRegister] pake key")
	}
	serverMessage, state, err := f.protocol.StartRegister([]byte(usp), clientMessage, key)
	if err != nil {
		log.Info().Err(err).Str("usp_hex", usp).Msg("register start rejected")
		return nil, errors.ErrInvalidRequest
	}
	return f.saveState(ctx, usp, serverMessage, state)
}

// FinishRegister stores the password file the exchange produced as a new user.
func (f *Flow) FinishRegister(ctx context.Context, req oauth2.FinishRegister) (*users.User, error) {
	clientMessage, err := decodeMessage(req.ClientFinish)
	if err != nil {
		return nil, err
	}
	saved, err := f.loadState(ctx, req.AuthID, req.Username)
	if err != nil {
		return nil, err
	}

	passwordFile, err := f.protocol.FinishRegister(saved.State, clientMessage)
	if err != nil {
		log.Info().Err(err).Str("usp_hex", saved.UspHex).Msg("register finish rejected")
		return nil, errors.ErrInvalidRequest
	}

	user := &users.User{UspHex: saved.UspHex, PasswordFile: passwordFile}
	id, err := f.users.Insert(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Flow.FinishRegister] insert")
	}
	user.ID = id
	log.Info().Int64("user_id", id).Msg("user registered")
	return user, nil
}

func (f *Flow) saveState(ctx context.Context, usp string, serverMessage, state []byte) (*oauth2.PasswordResponse, error) {
	authID, err := utils.RandomTimeHashHex(f.nowTime(), []byte(usp))
	if err != nil {
		return nil, err
	}
	if err := f.cache.Put(ctx, kv.AuthKey(authID), flowState{UspHex: usp, State: state}, f.config.GetLoginFlowTTL()); err != nil {
		return nil, pkgerrors.Wrap(err, "[Flow.saveState] put")
	}
	return &oauth2.PasswordResponse{
		ServerMessage: base64.RawURLEncoding.EncodeToString(serverMessage),
		AuthID:        authID,
	}, nil
}

// loadState consumes the saved state for authID. The username given at finish must
// canonicalize to the one given at start; a mismatch leaves the state in place for the
// rightful finish.
func (f *Flow) loadState(ctx context.Context, authID, username string) (*flowState, error) {
	var saved flowState
	found, err := f.cache.Get(ctx, kv.AuthKey(authID), &saved)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Flow.loadState] get")
	}
	if !found {
		return nil, errors.ErrFlowExpired
	}
	if users.UspHex(username) != saved.UspHex {
		return nil, errors.ErrIncorrectFinishUsername
	}

	found, err = f.cache.Take(ctx, kv.AuthKey(authID), &saved)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Flow.loadState] take")
	}
	if !found {
		return nil, errors.ErrFlowExpired
	}
	return &saved, nil
}

func (f *Flow) serverKey(ctx context.Context) (ServerKey, error) {
	private, err := f.keys.PakePrivateKey(ctx)
	if err != nil {
		return ServerKey{}, err
	}
	public, err := f.keys.PakePublicKey(ctx)
	if err != nil {
		return ServerKey{}, err
	}
	return ServerKey{Private: private, Public: public}, nil
}

func decodeMessage(encoded string) ([]byte, error) {
	msg, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(msg) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "client_request must be non-empty base64url")
	}
	return msg, nil
}
