package authn

import (
	"context"
	"net/http"
)

// ctxKey is an unexported type to avoid context key collisions.
type ctxKey int

const labelCtxKey ctxKey = 0

// Credentials is the row the Authenticator needs to verify a login
// attempt for one label.
type Credentials struct {
	Label        string
	PasswordHash string
}

// Lookup resolves a label to its stored credentials. found is false
// when no such label exists; Authenticator still performs a dummy
// verification pass in that case so a missing label and a wrong
// password take the same amount of time (P7).
type Lookup func(ctx context.Context, label string) (creds Credentials, found bool, err error)

// Toucher records a successful login against the label's row
// (verify_and_touch's "touch" half, spec §4.C/§4.G).
type Toucher func(ctx context.Context, label string) error

// Authenticator is component G: it resolves Basic-style credentials
// (whether carried in an HTTP header or a JSON request body) to a
// verified identity.
type Authenticator struct {
	lookup Lookup
	touch  Toucher
}

// NewAuthenticator builds an Authenticator backed by lookup and touch.
func NewAuthenticator(lookup Lookup, touch Toucher) *Authenticator {
	return &Authenticator{lookup: lookup, touch: touch}
}

// Middleware enforces HTTP Basic auth, storing the authenticated label
// in the request context on success.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		label, password, ok := r.BasicAuth()
		if !ok {
			unauthorized(w)
			return
		}

		authenticated, err := a.Verify(r.Context(), label, password)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !authenticated {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), labelCtxKey, label)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Verify is component G's verify_and_touch: it always performs exactly
// one VerifyPassword call, against the real stored hash when the label
// exists and against DummyHash otherwise, so lookup failure and
// password failure are indistinguishable from response timing (P7). On
// success it touches the row's last_login_at.
func (a *Authenticator) Verify(ctx context.Context, label, password string) (bool, error) {
	creds, found, err := a.lookup(ctx, label)
	if err != nil {
		return false, err
	}

	hash := DummyHash
	if found {
		hash = creds.PasswordHash
	}

	ok, err := VerifyPassword(hash, password)
	if err != nil {
		return false, err
	}
	if !found || !ok {
		return false, nil
	}

	if err := a.touch(ctx, label); err != nil {
		return false, err
	}
	return true, nil
}

// LabelFromContext retrieves the label stored by Middleware, if any.
func LabelFromContext(ctx context.Context) (string, bool) {
	label, ok := ctx.Value(labelCtxKey).(string)
	return label, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="satsuki"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
