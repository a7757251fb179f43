package auth

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-token-authority/clients"
	"github.com/jrsteele09/go-token-authority/internal/config"
	"github.com/jrsteele09/go-token-authority/internal/errors"
	"github.com/jrsteele09/go-token-authority/internal/utils"
	"github.com/jrsteele09/go-token-authority/kv"
	"github.com/jrsteele09/go-token-authority/oauth2"
	pkgerrors "github.com/pkg/errors"
)

// Repos holds all repository dependencies for the AuthorizationService
type Repos struct {
	Clients clients.Repo // Registered OAuth2 clients
	Cache   kv.Store     // Pending authorization requests, keyed by flow id
}

// AuthorizationService runs the front half of the authorization code flow: it parks a
// validated request under a flow id while the user logs in, then sends the user-agent
// back to the client with the code.
type AuthorizationService struct {
	repos     Repos
	config    config.OAuthConfig
	validator *Validator
	nowTime   func() time.Time // nowTime function (injectable for testing)
}

// AuthorizationServiceOption defines a function type to modify the AuthorizationService instance.
type AuthorizationServiceOption func(*AuthorizationService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.nowTime = nowFunc
	}
}

// NewAuthorizationService initializes a new AuthorizationService with required dependencies.
func NewAuthorizationService(repos Repos, cfg config.OAuthConfig, options ...AuthorizationServiceOption) (*AuthorizationService, error) {
	if repos.Clients == nil {
		return nil, pkgerrors.New("[NewAuthorizationService] Clients repo is required")
	}
	if repos.Cache == nil {
		return nil, pkgerrors.New("[NewAuthorizationService] Cache is required")
	}
	if cfg == nil {
		return nil, pkgerrors.New("[NewAuthorizationService] config is required")
	}

	as := &AuthorizationService{
		repos:     repos,
		config:    cfg,
		validator: NewValidator(),
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(as)
	}
	return as, nil
}

// Begin validates req, caches it under a new flow id for the authorization flow TTL
// and returns the login page URL carrying that flow id.
func (as *AuthorizationService) Begin(ctx context.Context, req oauth2.AuthorizationRequest) (string, string, error) {
	var client *clients.Client
	if !as.repos.Clients.Open() {
		c, err := as.repos.Clients.Get(ctx, req.ClientID)
		if err != nil {
			return "", "", err
		}
		client = c
	}
	if err := as.validator.ValidateAuthorizationRequest(req, client); err != nil {
		return "", "", err
	}

	flowID, err := utils.RandomTimeHashHex(as.nowTime(), nil)
	if err != nil {
		return "", "", err
	}
	if err := as.repos.Cache.Put(ctx, kv.FlowKey(flowID), req, as.config.GetAuthFlowTTL()); err != nil {
		return "", "", pkgerrors.Wrap(err, "[AuthorizationService.Begin] put")
	}

	loginURL := as.config.GetLoginPageURL()
	sep := "?"
	if strings.Contains(loginURL, "?") {
		sep = "&"
	}
	return flowID, loginURL + sep + "flow_id=" + url.QueryEscape(flowID), nil
}

// Complete returns the redirect back to the client for flowID carrying code and the
// original state. The caller has already bound code to the authenticated user.
func (as *AuthorizationService) Complete(ctx context.Context, flowID, code string) (string, error) {
	if flowID == "" {
		return "", MissingFlowIDErr
	}
	if code == "" {
		return "", MissingCodeErr
	}

	var req oauth2.AuthorizationRequest
	found, err := as.repos.Cache.Get(ctx, kv.FlowKey(flowID), &req)
	if err != nil {
		return "", pkgerrors.Wrap(err, "[AuthorizationService.Complete] get")
	}
	if !found {
		return "", errors.ErrExpiredFlowID
	}
	return CallbackURL(req.RedirectURI, code, req.State), nil
}

// CallbackURL appends code and state to redirectURI, adding a trailing slash before the
// query when the URI lacks one.
func CallbackURL(redirectURI, code, state string) string {
	var b strings.Builder
	b.WriteString(redirectURI)
	if !strings.HasSuffix(redirectURI, "/") {
		b.WriteByte('/')
	}
	b.WriteString("?code=")
	b.WriteString(url.QueryEscape(code))
	b.WriteString("&state=")
	b.WriteString(url.QueryEscape(state))
	return b.String()
}
