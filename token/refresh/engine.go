package refresh

import (
	"context"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-token-authority/internal/config"
	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/internal/utils"
	"github.com/jrsteele09/go-token-authority/token/jwt"
	"github.com/oklog/ulid/v2"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// EpochFloor is the earliest iat a stored link may carry (2022-01-01T00:00:00Z).
const EpochFloor int64 = 1640995200

const nonceLength = 32

// KeySource supplies the signing and sealing keys.
type KeySource interface {
	SigningKey(ctx context.Context) ([]byte, int64, error)
	RefreshKey(ctx context.Context) ([]byte, error)
}

// Tokens is the result of a family creation or rotation.
type Tokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	Scope        string
}

// Subject is the authenticated party a new family is minted for.
type Subject struct {
	Sub      string
	ClientID string
	Scope    string
	Nonce    string
	AuthTime int64
}

// Engine creates refresh families and rotates their links.
type Engine struct {
	repo    Repo
	keys    KeySource
	codec   *jwt.Codec
	config  config.OAuthConfig
	metrics *Metrics
	nowTime func() time.Time
}

// EngineOption defines a function type to modify the Engine instance.
type EngineOption func(*Engine)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) EngineOption {
	return func(e *Engine) {
		e.nowTime = nowFunc
	}
}

// WithMetrics records outcomes on m.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

func NewEngine(repo Repo, keys KeySource, cfg config.OAuthConfig, options ...EngineOption) (*Engine, error) {
	if repo == nil {
		return nil, pkgerrors.New("[NewEngine] refresh repo is required")
	}
	if keys == nil {
		return nil, pkgerrors.New("[NewEngine] key source is required")
	}
	if cfg == nil {
		return nil, pkgerrors.New("[NewEngine] config is required")
	}

	e := &Engine{
		repo:    repo,
		keys:    keys,
		codec:   jwt.NewCodec(),
		config:  cfg,
		metrics: NewMetrics(nil),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(e)
	}
	return e, nil
}

// NewFamily starts a refresh chain for subject and issues its first tokens.
// The first link carries an empty nonce since no rotation token exists yet.
func (e *Engine) NewFamily(ctx context.Context, subject Subject) (*Tokens, error) {
	access := jwt.AccessClaims{
		Scope: subject.Scope,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:  subject.Sub,
			Issuer:   e.config.GetIssuer(),
			Audience: jwtlib.ClaimStrings{e.config.GetAudience()},
		},
	}
	id := jwt.IDClaims{
		AuthTime: subject.AuthTime,
		Nonce:    subject.Nonce,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:  subject.Sub,
			Issuer:   e.config.GetIssuer(),
			Audience: jwtlib.ClaimStrings{subject.ClientID},
		},
	}

	accessValue, err := jwt.EncodeTemplate(access)
	if err != nil {
		return nil, err
	}
	idValue, err := jwt.EncodeTemplate(id)
	if err != nil {
		return nil, err
	}

	now := e.nowTime()
	tokens, err := e.sign(ctx, now, access, id)
	if err != nil {
		return nil, err
	}
	refreshKey, err := e.keys.RefreshKey(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Engine.NewFamily] refresh key")
	}

	row := &SavedRefreshToken{
		FamilyID:     ulid.Make().String(),
		AccessValue:  accessValue,
		IDTokenValue: idValue,
		Iat:          now.Unix(),
		Exp:          now.Add(e.config.GetRefreshTokenExpiry()).Unix(),
		Nonce:        "",
	}
	rowID, err := e.repo.Insert(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Engine.NewFamily] insert")
	}

	if err := e.seal(ctx, refreshKey, tokens, RefreshToken{ID: rowID, FamilyID: row.FamilyID, Nonce: row.Nonce}); err != nil {
		return nil, err
	}
	e.metrics.FamiliesCreated.Inc()
	return tokens, nil
}

// Rotate validates a presented refresh handle and replaces its link with a new one.
//
// A handle pointing at a missing row means the link was already consumed: the whole
// family is deleted before ErrInvalidRefresh is returned. Concurrent rotations of one
// handle race on Replace and every loser takes that same path.
func (e *Engine) Rotate(ctx context.Context, handle string) (*Tokens, error) {
	key, err := e.keys.RefreshKey(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Engine.Rotate] refresh key")
	}
	presented, err := DecodeHandle(key, handle)
	if err != nil {
		e.metrics.Rotations.WithLabelValues(resultInvalid).Inc()
		return nil, err
	}

	row, err := e.repo.Get(ctx, presented.ID)
	if errors.Is(err, errors.ErrNoRow) {
		return nil, e.revokeFamily(ctx, presented.FamilyID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Engine.Rotate] get")
	}

	if row.Nonce != presented.Nonce || row.FamilyID != presented.FamilyID {
		e.metrics.Rotations.WithLabelValues(resultInvalid).Inc()
		return nil, errors.ErrInvalidRefresh
	}

	now := e.nowTime()
	if !e.linkUsable(row, now.Unix()) {
		e.metrics.Rotations.WithLabelValues(resultInvalid).Inc()
		return nil, errors.ErrInvalidRefresh
	}

	access, err := jwt.DecodeAccessTemplate(row.AccessValue)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Engine.Rotate] access template")
	}
	id, err := jwt.DecodeIDTemplate(row.IDTokenValue)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Engine.Rotate] id template")
	}

	tokens, err := e.sign(ctx, now, access, id)
	if err != nil {
		return nil, err
	}
	nonce, err := utils.RandomURLSafe(nonceLength)
	if err != nil {
		return nil, err
	}
	next := &SavedRefreshToken{
		FamilyID:     row.FamilyID,
		AccessValue:  row.AccessValue,
		IDTokenValue: row.IDTokenValue,
		Iat:          now.Unix(),
		Exp:          now.Add(e.config.GetRefreshTokenExpiry()).Unix(),
		Nonce:        nonce,
	}
	nextID, err := e.repo.Replace(ctx, row.ID, next)
	if errors.Is(err, errors.ErrNoRow) {
		return nil, e.revokeFamily(ctx, presented.FamilyID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Engine.Rotate] replace")
	}

	if err := e.seal(ctx, key, tokens, RefreshToken{ID: nextID, FamilyID: next.FamilyID, Nonce: nonce}); err != nil {
		return nil, err
	}
	e.metrics.Rotations.WithLabelValues(resultOK).Inc()
	return tokens, nil
}

// linkUsable applies the temporal checks: iat within [EpochFloor, now] and now no later
// than exp plus the grace period.
func (e *Engine) linkUsable(row *SavedRefreshToken, now int64) bool {
	if row.Iat > now || row.Iat < EpochFloor {
		return false
	}
	grace := int64(e.config.GetRefreshGracePeriod() / time.Second)
	return now <= row.Exp+grace
}

func (e *Engine) revokeFamily(ctx context.Context, familyID string) error {
	e.metrics.Rotations.WithLabelValues(resultTheft).Inc()
	log.Warn().Str("family_id", familyID).Msg("refresh token reuse detected, revoking family")
	if err := e.repo.DeleteFamily(ctx, familyID); err != nil {
		return pkgerrors.Wrap(err, "[Engine.Rotate] delete family")
	}
	return errors.ErrInvalidRefresh
}

// sign stamps both templates at now and signs them. The id token shares the access
// token lifetime. Nothing is persisted yet, so a failure here leaves the chain as it was.
func (e *Engine) sign(ctx context.Context, now time.Time, access jwt.AccessClaims, id jwt.IDClaims) (*Tokens, error) {
	signingKey, kid, err := e.keys.SigningKey(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Engine.sign] signing key")
	}

	lifetime := e.config.GetAccessTokenExpiry()
	kidStr := strconv.FormatInt(kid, 10)

	accessToken, err := e.codec.Sign(signingKey, kidStr, access.Stamp(now, lifetime))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Engine.sign] access token")
	}
	idToken, err := e.codec.Sign(signingKey, kidStr, id.Stamp(now, lifetime))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Engine.sign] id token")
	}

	return &Tokens{
		AccessToken: accessToken,
		IDToken:     idToken,
		Scope:       access.Scope,
	}, nil
}

// seal sets the refresh handle for the link just written. A link whose handle cannot be
// sealed is unreachable, so it is deleted again.
func (e *Engine) seal(ctx context.Context, key []byte, tokens *Tokens, handle RefreshToken) error {
	refreshToken, err := EncodeHandle(key, handle)
	if err != nil {
		if delErr := e.repo.Delete(ctx, handle.ID); delErr != nil && !errors.Is(delErr, errors.ErrNoRow) {
			log.Err(delErr).Int64("id", handle.ID).Str("family_id", handle.FamilyID).Msg("failed to delete unsealed refresh link")
		}
		return pkgerrors.Wrap(err, "[Engine.seal] refresh handle")
	}
	tokens.RefreshToken = refreshToken
	return nil
}
