// Package metrics implements the metrics sampler (component I): a
// single gauge counting delegations in the parent zone, computed
// synchronously on every scrape.
package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/satsuki-dns/pdns-frontend/internal/orchestrator"
)

// Lister is the subset of the orchestrator the sampler needs.
type Lister interface {
	ListDelegations(ctx context.Context) ([]orchestrator.Delegation, error)
}

// Handler renders Prometheus text exposition format on every request;
// there is no caching, matching spec §4.I's "scrape cost is one
// upstream GET".
func Handler(lister Lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		delegations, err := lister.ListDelegations(r.Context())
		if err != nil {
			http.Error(w, "metrics unavailable", http.StatusBadGateway)
			return
		}

		count := countNonApex(delegations)

		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		writeGauge(w, "satsuki_subdomains_total", "Number of delegated subdomains in the parent zone.", count)
	}
}

// countNonApex counts delegation owner names excluding the zone apex.
// The apex is always the shortest owner name in the set: every
// delegated label's owner name is "{label}." prepended to it, so it is
// strictly longer.
func countNonApex(delegations []orchestrator.Delegation) int {
	if len(delegations) == 0 {
		return 0
	}
	minLen := len(delegations[0].Name)
	for _, d := range delegations {
		if len(d.Name) < minLen {
			minLen = len(d.Name)
		}
	}
	count := 0
	for _, d := range delegations {
		if len(d.Name) > minLen {
			count++
		}
	}
	return count
}

func writeGauge(w io.Writer, name, help string, value int) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s gauge\n", name)
	fmt.Fprintf(w, "%s %d\n", name, value)
}
