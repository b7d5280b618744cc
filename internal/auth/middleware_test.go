package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// okHandler records the session it sees.
func okHandler(got *Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := SessionFromContext(r.Context()); ok {
			*got = s
		}
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithToken(t *testing.T, ts *TokenService, path string) *http.Request {
	t.Helper()
	token, err := ts.Generate("acc-1", "ann@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	return req
}

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)

	t.Run("anonymous gets 401", func(t *testing.T) {
		var got Session
		rec := httptest.NewRecorder()
		RequireAuth(ts)(okHandler(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
	})

	t.Run("valid cookie passes session through", func(t *testing.T) {
		var got Session
		rec := httptest.NewRecorder()
		RequireAuth(ts)(okHandler(&got)).ServeHTTP(rec, requestWithToken(t, ts, "/api/me"))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got.AccountID != "acc-1" || got.Email != "ann@example.com" {
			t.Errorf("session = %+v", got)
		}
	})
}

func TestRedirectIfAnonymous(t *testing.T) {
	ts := newTestTokenService(t)
	var got Session
	h := RedirectIfAnonymous(ts, "/login")(okHandler(&got))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Errorf("anonymous: status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithToken(t, ts, "/dashboard"))
	if rec.Code != http.StatusOK {
		t.Errorf("signed in: status = %d, want 200", rec.Code)
	}
}

func TestRedirectIfAuthenticated(t *testing.T) {
	ts := newTestTokenService(t)
	var got Session
	h := RedirectIfAuthenticated(ts, "/dashboard")(okHandler(&got))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithToken(t, ts, "/login"))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Errorf("signed in: status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("anonymous: status = %d, want 200", rec.Code)
	}
}

func TestRedirectIfAuthenticated_ExpiredTokenIsAnonymous(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.GenerateWithDuration("acc-1", "a@x.io", -time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()

	var got Session
	RedirectIfAuthenticated(ts, "/dashboard")(okHandler(&got)).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (login page rendered)", rec.Code)
	}
}

func TestSessionCookies(t *testing.T) {
	ts := newTestTokenService(t)

	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok", ts, true)
	c := rec.Result().Cookies()[0]
	if c.Name != CookieName || c.Value != "tok" || !c.HttpOnly || !c.Secure {
		t.Errorf("set cookie = %+v", c)
	}
	if c.MaxAge != int(time.Hour.Seconds()) {
		t.Errorf("MaxAge = %d", c.MaxAge)
	}

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec, false)
	c = rec.Result().Cookies()[0]
	if c.MaxAge >= 0 || c.Value != "" {
		t.Errorf("clear cookie = %+v", c)
	}
}
