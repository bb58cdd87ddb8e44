package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func testGateway() *Gateway {
	return NewGateway(Options{
		SessionSecret: "test-session-secret-0123456789abcdef",
		SessionMaxAge: time.Hour,
		SigningKey:    "test-signing-key",
		Issuer:        "test-issuer",
		AccessTTL:     time.Minute,
	})
}

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue(Principal{Kind: KindAdmin, ID: "a-1"}, "test-issuer", "key", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := Parse(tok.AccessToken, "key", "test-issuer")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Kind != KindAdmin || claims.Subject != "a-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := Parse(tok.AccessToken, "other-key", "test-issuer"); err == nil {
		t.Fatalf("expected signature failure")
	}
	if _, err := Parse(tok.AccessToken, "key", "someone-else"); err == nil {
		t.Fatalf("expected issuer mismatch")
	}

	expired, _ := Issue(Principal{Kind: KindStudent, ID: "s-1"}, "test-issuer", "key", -time.Minute)
	if _, err := Parse(expired.AccessToken, "key", "test-issuer"); err == nil {
		t.Fatalf("expected expired token to fail")
	}

	bogus, _ := Issue(Principal{Kind: "guest", ID: "g-1"}, "test-issuer", "key", time.Minute)
	if _, err := Parse(bogus.AccessToken, "key", "test-issuer"); err == nil {
		t.Fatalf("expected unknown kind to fail")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	gw := testGateway()

	login := httptest.NewRecorder()
	tok, err := gw.Establish(login, httptest.NewRequest(http.MethodPost, "/users/login", nil), Principal{Kind: KindStudent, ID: "s-1"})
	if err != nil {
		t.Fatalf("establish: %v", err)
	}
	if tok.AccessToken == "" {
		t.Fatalf("expected access token")
	}
	cookies := login.Result().Cookies()
	if len(cookies) != 1 || !cookies[0].HttpOnly {
		t.Fatalf("expected one http-only session cookie, got %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/rooms", nil)
	req.AddCookie(cookies[0])
	p, err := gw.CurrentPrincipal(req)
	if err != nil || p.Kind != KindStudent || p.ID != "s-1" {
		t.Fatalf("expected session principal, got %+v %v", p, err)
	}

	bearer := httptest.NewRequest(http.MethodGet, "/admin/rooms", nil)
	bearer.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	p, err = gw.CurrentPrincipal(bearer)
	if err != nil || p.ID != "s-1" {
		t.Fatalf("expected bearer principal, got %+v %v", p, err)
	}

	logout := httptest.NewRecorder()
	if err := gw.Clear(logout, req); err != nil {
		t.Fatalf("clear: %v", err)
	}
	cleared := logout.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("expected expiring cookie, got %+v", cleared)
	}
}

func TestCurrentPrincipalRejects(t *testing.T) {
	gw := testGateway()

	anon := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := gw.CurrentPrincipal(anon); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	badBearer := httptest.NewRequest(http.MethodGet, "/", nil)
	badBearer.Header.Set("Authorization", "Bearer nonsense")
	if _, err := gw.CurrentPrincipal(badBearer); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for bad token, got %v", err)
	}

	basic := httptest.NewRequest(http.MethodGet, "/", nil)
	basic.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	if _, err := gw.CurrentPrincipal(basic); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for basic auth, got %v", err)
	}

	forged := httptest.NewRequest(http.MethodGet, "/", nil)
	forged.AddCookie(&http.Cookie{Name: sessionName, Value: "tampered"})
	if _, err := gw.CurrentPrincipal(forged); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for forged cookie, got %v", err)
	}
}

type staticLookup struct {
	p   Principal
	err error
}

func (s staticLookup) CurrentPrincipal(*http.Request) (Principal, error) { return s.p, s.err }

func TestRequirePrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		lookup staticLookup
		want   int
	}{
		{"anonymous", staticLookup{err: ErrUnauthenticated}, http.StatusUnauthorized},
		{"student", staticLookup{p: Principal{Kind: KindStudent, ID: "s"}}, http.StatusForbidden},
		{"admin", staticLookup{p: Principal{Kind: KindAdmin, ID: "a"}}, http.StatusOK},
		{"lookup failure", staticLookup{err: errors.New("connection refused")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/admin", RequirePrincipal(tc.lookup, KindAdmin), func(c *gin.Context) {
			p, ok := PrincipalFrom(c)
			if !ok || p.Kind != KindAdmin {
				t.Errorf("%s: principal missing from context", tc.name)
			}
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		if w.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, w.Code)
		}
	}
}

type accountSet map[string]bool

func (a accountSet) PrincipalExists(_ context.Context, p Principal) (bool, error) {
	if p.ID == "broken" {
		return false, errors.New("connection refused")
	}
	return a[p.ID], nil
}

func TestCurrentPrincipalChecksAccount(t *testing.T) {
	gw := NewGateway(Options{
		SessionSecret: "test-session-secret-0123456789abcdef",
		SigningKey:    "test-signing-key",
		Issuer:        "test-issuer",
		Accounts:      accountSet{"a-1": true},
	})

	bearer := func(id string) *http.Request {
		tok, err := Issue(Principal{Kind: KindAdmin, ID: id}, "test-issuer", "test-signing-key", time.Minute)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/admin/rooms", nil)
		req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
		return req
	}

	if p, err := gw.CurrentPrincipal(bearer("a-1")); err != nil || p.ID != "a-1" {
		t.Fatalf("expected known admin, got %+v %v", p, err)
	}
	if _, err := gw.CurrentPrincipal(bearer("a-2")); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for a removed account, got %v", err)
	}
	_, err := gw.CurrentPrincipal(bearer("broken"))
	if err == nil || errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected the account check failure, got %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/rooms", RequirePrincipal(gw, KindAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	for id, want := range map[string]int{"a-1": http.StatusOK, "a-2": http.StatusUnauthorized, "broken": http.StatusInternalServerError} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, bearer(id))
		if w.Code != want {
			t.Fatalf("%s: expected %d, got %d", id, want, w.Code)
		}
	}
}
