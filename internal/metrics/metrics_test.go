package metrics

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/satsuki-dns/pdns-frontend/internal/orchestrator"
)

type fakeLister struct {
	delegations []orchestrator.Delegation
	err         error
}

func (f fakeLister) ListDelegations(context.Context) ([]orchestrator.Delegation, error) {
	return f.delegations, f.err
}

func TestHandlerCountsExcludingApex(t *testing.T) {
	lister := fakeLister{delegations: []orchestrator.Delegation{
		{Name: "example.com.", Records: []string{"ns1.example.net.", "ns2.example.net."}},
		{Name: "alice.example.com.", Records: []string{"ns1.example.net."}},
		{Name: "bob.example.com.", Records: []string{"ns1.example.net."}},
	}}

	rec := httptest.NewRecorder()
	Handler(lister).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "satsuki_subdomains_total 2\n") {
		t.Fatalf("expected count of 2, got body: %s", body)
	}
}

func TestHandlerUpstreamFailure(t *testing.T) {
	lister := fakeLister{err: errUnavailable{}}

	rec := httptest.NewRecorder()
	Handler(lister).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 502 {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

type errUnavailable struct{}

func (errUnavailable) Error() string { return "upstream unavailable" }
