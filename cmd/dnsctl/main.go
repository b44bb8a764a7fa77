// Command dnsctl is a read-only operator dashboard: it lists current
// delegations and lets an operator inspect one label's zone without
// granting it any mutation path onto PDNS (spec §9 admin surface,
// supplemented — the original operator tooling this was distilled from
// carried an equivalent read-only "inspect a tenant" view).
package main

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/satsuki-dns/pdns-frontend/internal/authn"
	"github.com/satsuki-dns/pdns-frontend/internal/config"
	"github.com/satsuki-dns/pdns-frontend/internal/label"
	"github.com/satsuki-dns/pdns-frontend/internal/orchestrator"
	"github.com/satsuki-dns/pdns-frontend/internal/pdns"
	"github.com/satsuki-dns/pdns-frontend/internal/userstore"
	"github.com/satsuki-dns/pdns-frontend/migrations"
)

type server struct {
	orch  *orchestrator.Orchestrator
	store *userstore.Store
	tpl   *template.Template
}

type pageData struct {
	Now            string
	Delegations    []orchestrator.Delegation
	TotalUsers     int64
	Queried        string
	QueriedRecords []orchestrator.ZoneRecordView
	QueryError     string
	ListError      string
}

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

	tpl, err := template.New("index").Parse(indexHTML)
	if err != nil {
		log.Fatalf("parse template: %v", err)
	}

	s := &server{orch: orch, store: store, tpl: tpl}

	listen := envOrDefault("DNSCTL_LISTEN", ":8091")
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/lookup", s.handleLookup)

	log.Printf("dnsctl listening on %s", listen)
	if err := http.ListenAndServe(listen, mux); err != nil {
		log.Fatalf("dnsctl server failed: %v", err)
	}
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.render(w, r.Context(), pageData{})
}

func (s *server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	lbl := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("label")))
	data := pageData{Queried: lbl}
	if lbl != "" {
		records, err := s.orch.GetZone(r.Context(), lbl)
		if err != nil {
			data.QueryError = err.Error()
		} else {
			data.QueriedRecords = records
		}
	}
	s.render(w, r.Context(), data)
}

func (s *server) render(w http.ResponseWriter, ctx context.Context, data pageData) {
	delegations, err := s.orch.ListDelegations(ctx)
	if err != nil {
		data.ListError = err.Error()
	}
	data.Delegations = delegations

	total, err := s.store.CountLabels(ctx)
	if err == nil {
		data.TotalUsers = total
	}
	data.Now = time.Now().UTC().Format(time.RFC3339)

	if err := s.tpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Subdomain Delegation Dashboard</title>
  <style>
    :root { --bg:#f5f7fa; --card:#fff; --txt:#1f2937; --muted:#6b7280; --accent:#0f766e; --bad:#b91c1c; }
    * { box-sizing:border-box; }
    body { margin:0; font-family: ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Arial; color:var(--txt); background:var(--bg); }
    .wrap { max-width:1000px; margin:0 auto; padding:20px; }
    .card { background:var(--card); border-radius:12px; padding:16px; box-shadow:0 1px 6px rgba(0,0,0,.07); margin-bottom:16px; }
    h1,h2 { margin:0 0 10px; }
    table { width:100%; border-collapse:collapse; font-size:13px; }
    th,td { padding:8px; border-bottom:1px solid #e5e7eb; text-align:left; }
    .mono { font-family: ui-monospace,SFMono-Regular,Menlo,Consolas,monospace; }
    .small { color:var(--muted); font-size:12px; }
    .bad { color:var(--bad); }
    input,button { padding:10px; border-radius:8px; border:1px solid #d1d5db; }
    button { background:var(--accent); border:none; color:white; font-weight:600; cursor:pointer; }
  </style>
</head>
<body>
  <div class="wrap">
    <h1>Subdomain Delegation Dashboard</h1>
    <p class="small">Read-only view. Time: {{.Now}}</p>

    <section class="card">
      <h2>Summary</h2>
      <p>Signed-up labels: <strong>{{.TotalUsers}}</strong></p>
      <p>Delegated owner names (parent zone, including apex): <strong>{{len .Delegations}}</strong></p>
      {{if .ListError}}<p class="bad">{{.ListError}}</p>{{end}}
    </section>

    <section class="card">
      <h2>Inspect a label's zone</h2>
      <form method="get" action="/lookup">
        <input name="label" placeholder="alice" value="{{.Queried}}">
        <button type="submit">Lookup</button>
      </form>
      {{if .QueryError}}<p class="bad">{{.QueryError}}</p>{{end}}
      {{if .QueriedRecords}}
      <table>
        <thead><tr><th>Name</th><th>Type</th><th>TTL</th><th>Content</th></tr></thead>
        <tbody>
          {{range .QueriedRecords}}
          <tr>
            <td class="mono">{{.Name}}</td>
            <td>{{.RRType}}</td>
            <td>{{.TTL}}</td>
            <td class="mono">{{.Content}}</td>
          </tr>
          {{end}}
        </tbody>
      </table>
      {{end}}
    </section>

    <section class="card">
      <h2>Delegations</h2>
      <table>
        <thead><tr><th>Name</th><th>Records</th></tr></thead>
        <tbody>
          {{range .Delegations}}
          <tr>
            <td class="mono">{{.Name}}</td>
            <td class="mono">{{range $i, $r := .Records}}{{if $i}}, {{end}}{{$r}}{{end}}</td>
          </tr>
          {{end}}
        </tbody>
      </table>
    </section>
  </div>
</body>
</html>`
