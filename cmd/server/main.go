// Command server runs the subdomain delegation frontend: the HTTP API
// (spec §6), its metrics endpoint, and the saga orchestrator wiring
// the two PowerDNS instances and the local user store together.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/satsuki-dns/pdns-frontend/internal/authn"
	"github.com/satsuki-dns/pdns-frontend/internal/config"
	"github.com/satsuki-dns/pdns-frontend/internal/httpapi"
	"github.com/satsuki-dns/pdns-frontend/internal/label"
	"github.com/satsuki-dns/pdns-frontend/internal/metrics"
	"github.com/satsuki-dns/pdns-frontend/internal/orchestrator"
	"github.com/satsuki-dns/pdns-frontend/internal/pdns"
	"github.com/satsuki-dns/pdns-frontend/internal/userstore"
	"github.com/satsuki-dns/pdns-frontend/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, _, err := userstore.Open(cfg.DBPath, migrations.FS)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	sub := pdns.New(cfg.SubPDNS.URL, cfg.SubPDNS.APIKey, cfg.SubPDNS.ServerID)
	base := pdns.New(cfg.BasePDNS.URL, cfg.BasePDNS.APIKey, cfg.BasePDNS.ServerID)

	labels := label.NewPolicy(cfg.DisallowedLabels)

	orch := orchestrator.New(orchestrator.Config{
		BaseDomain: cfg.BaseDomain,
		InternalNS: cfg.InternalNS,
		ChildSOA:   cfg.ChildSOA,
	}, sub, base, store, authn.PasswordHasher{}, labels)

	lookup := func(ctx context.Context, lbl string) (authn.Credentials, bool, error) {
		user, err := store.Get(ctx, lbl)
		if errors.Is(err, userstore.ErrNotFound) {
			return authn.Credentials{}, false, nil
		}
		if err != nil {
			return authn.Credentials{}, false, err
		}
		return authn.Credentials{Label: user.Label, PasswordHash: user.PasswordHash}, true, nil
	}
	auth := authn.NewAuthenticator(lookup, store.VerifyAndTouch)

	api := httpapi.New(orch, store, labels, auth, cfg.BaseDomain)

	mux := http.NewServeMux()
	mux.Handle("/", api.Router())
	mux.Handle("/metrics", metrics.Handler(orch))

	httpServer := &http.Server{
		Addr:              cfg.HTTPListen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", cfg.HTTPListen)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http server: %v", err)
	}
}
