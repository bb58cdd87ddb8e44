package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
)

var ErrUnauthenticated = errors.New("not authenticated")

// Kind distinguishes students from administrators.
type Kind string

const (
	KindStudent Kind = "student"
	KindAdmin   Kind = "admin"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool { return k == KindStudent || k == KindAdmin }

// Principal is an authenticated identity.
type Principal struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// PrincipalLookup resolves the caller of a request.
type PrincipalLookup interface {
	CurrentPrincipal(r *http.Request) (Principal, error)
}

// AccountChecker confirms that the account behind a principal is still on
// record.
type AccountChecker interface {
	PrincipalExists(ctx context.Context, p Principal) (bool, error)
}

const (
	sessionName = "geoattend-session"
	keyKind     = "principal_kind"
	keyID       = "principal_id"
)

// Options configures a Gateway.
type Options struct {
	SessionSecret string
	SessionMaxAge time.Duration
	CookieSecure  bool
	SigningKey    string
	Issuer        string
	AccessTTL     time.Duration

	// Accounts, when set, is consulted on every request so principals of
	// removed accounts stop resolving.
	Accounts AccountChecker
}

// Gateway establishes principals after a successful login and resolves
// them on later requests, from a bearer token or the session cookie.
type Gateway struct {
	sessions   sessions.Store
	signingKey string
	issuer     string
	accessTTL  time.Duration
	accounts   AccountChecker
}

// NewGateway creates a gateway backed by signed cookie sessions.
func NewGateway(opts Options) *Gateway {
	store := sessions.NewCookieStore([]byte(opts.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.SessionMaxAge / time.Second),
		HttpOnly: true,
		Secure:   opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	// Cross-site frontends need SameSite=None, which browsers only accept
	// on secure cookies.
	if opts.CookieSecure {
		store.Options.SameSite = http.SameSiteNoneMode
	}
	ttl := opts.AccessTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Gateway{
		sessions:   store,
		signingKey: opts.SigningKey,
		issuer:     opts.Issuer,
		accessTTL:  ttl,
		accounts:   opts.Accounts,
	}
}

// CurrentPrincipal returns the caller of r. A bearer token, when present,
// must be valid; the session cookie is not consulted in that case. Errors
// other than ErrUnauthenticated come from the account check.
func (g *Gateway) CurrentPrincipal(r *http.Request) (Principal, error) {
	p, err := g.credentials(r)
	if err != nil {
		return Principal{}, err
	}
	if g.accounts == nil {
		return p, nil
	}
	ok, err := g.accounts.PrincipalExists(r.Context(), p)
	if err != nil {
		return Principal{}, fmt.Errorf("check %s account: %w", p.Kind, err)
	}
	if !ok {
		return Principal{}, ErrUnauthenticated
	}
	return p, nil
}

func (g *Gateway) credentials(r *http.Request) (Principal, error) {
	if authz := r.Header.Get("Authorization"); authz != "" {
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return Principal{}, ErrUnauthenticated
		}
		claims, err := Parse(strings.TrimSpace(authz[len("bearer "):]), g.signingKey, g.issuer)
		if err != nil {
			return Principal{}, ErrUnauthenticated
		}
		return Principal{Kind: claims.Kind, ID: claims.Subject}, nil
	}

	session, err := g.sessions.Get(r, sessionName)
	if err != nil || session.IsNew {
		return Principal{}, ErrUnauthenticated
	}
	kind, _ := session.Values[keyKind].(string)
	id, _ := session.Values[keyID].(string)
	p := Principal{Kind: Kind(kind), ID: id}
	if !p.Kind.Valid() || p.ID == "" {
		return Principal{}, ErrUnauthenticated
	}
	return p, nil
}

// Establish starts a session for p and issues an access token for clients
// that do not keep cookies.
func (g *Gateway) Establish(w http.ResponseWriter, r *http.Request, p Principal) (Token, error) {
	session, _ := g.sessions.Get(r, sessionName)
	session.Values[keyKind] = string(p.Kind)
	session.Values[keyID] = p.ID
	if err := session.Save(r, w); err != nil {
		return Token{}, err
	}
	return Issue(p, g.issuer, g.signingKey, g.accessTTL)
}

// Clear expires the session cookie.
func (g *Gateway) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := g.sessions.Get(r, sessionName)
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
