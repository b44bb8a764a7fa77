package authn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func lookupFor(t *testing.T, known map[string]string) (Lookup, *int) {
	hashes := make(map[string]string, len(known))
	for label, plain := range known {
		h, err := HashPassword(plain)
		if err != nil {
			t.Fatalf("HashPassword: %v", err)
		}
		hashes[label] = h
	}
	touches := new(int)
	lookup := func(_ context.Context, label string) (Credentials, bool, error) {
		h, ok := hashes[label]
		if !ok {
			return Credentials{}, false, nil
		}
		return Credentials{Label: label, PasswordHash: h}, true, nil
	}
	return lookup, touches
}

func newTestAuthenticator(t *testing.T, known map[string]string) (*Authenticator, *int) {
	lookup, touches := lookupFor(t, known)
	touch := func(_ context.Context, _ string) error {
		*touches++
		return nil
	}
	return NewAuthenticator(lookup, touch), touches
}

func TestMiddlewareAcceptsValidCredentials(t *testing.T) {
	auth, touches := newTestAuthenticator(t, map[string]string{"alice": "hunter2"})

	var gotLabel string
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLabel, _ = LabelFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("alice", "hunter2")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotLabel != "alice" {
		t.Fatalf("expected label alice in context, got %q", gotLabel)
	}
	if *touches != 1 {
		t.Fatalf("expected exactly one touch, got %d", *touches)
	}
}

func TestMiddlewareRejectsWrongPassword(t *testing.T) {
	auth, touches := newTestAuthenticator(t, map[string]string{"alice": "hunter2"})
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("alice", "wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if *touches != 0 {
		t.Fatalf("expected no touch on failed auth, got %d", *touches)
	}
}

func TestMiddlewareRejectsUnknownLabel(t *testing.T) {
	auth, _ := newTestAuthenticator(t, map[string]string{"alice": "hunter2"})
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("nobody", "whatever")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMiddlewareRejectsMissingCredentials(t *testing.T) {
	auth, _ := newTestAuthenticator(t, nil)
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Fatal("expected WWW-Authenticate challenge header")
	}
}
