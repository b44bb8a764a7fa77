// Package httpapi implements the request handlers (component H):
// thin mappers from the JSON HTTP surface (spec §6) to the
// orchestrator, user store, and label policy.
package httpapi

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/satsuki-dns/pdns-frontend/internal/apperr"
	"github.com/satsuki-dns/pdns-frontend/internal/authn"
	"github.com/satsuki-dns/pdns-frontend/internal/label"
	"github.com/satsuki-dns/pdns-frontend/internal/orchestrator"
	"github.com/satsuki-dns/pdns-frontend/internal/userstore"
	"github.com/satsuki-dns/pdns-frontend/internal/zone"
)

const minPasswordLength = 8

// Orchestrator is the subset of component F the handlers call
// (spec §9: keep the orchestrator expressible as a capability
// interface so handler tests can stub it).
type Orchestrator interface {
	Signup(ctx context.Context, label, password string) error
	SwitchExternal(ctx context.Context, label string, ns []string) error
	SwitchInternal(ctx context.Context, label string) error
	PutZone(ctx context.Context, label string, records []zone.RecordInput) error
	GetZone(ctx context.Context, label string) ([]orchestrator.ZoneRecordView, error)
	ListDelegations(ctx context.Context) ([]orchestrator.Delegation, error)
	GetParentSOA(ctx context.Context) (string, error)
}

// UserStore is the subset of component C the handlers call directly
// (profile reads, password changes) outside the orchestrator's saga.
type UserStore interface {
	Get(ctx context.Context, label string) (userstore.User, error)
	SetPassword(ctx context.Context, label, passwordHash string) error
}

// Server wires component H's dependencies.
type Server struct {
	orch       Orchestrator
	store      UserStore
	labels     *label.Policy
	auth       *authn.Authenticator
	baseDomain string
}

// New builds a Server.
func New(orch Orchestrator, store UserStore, labels *label.Policy, auth *authn.Authenticator, baseDomain string) *Server {
	return &Server{orch: orch, store: store, labels: labels, auth: auth, baseDomain: baseDomain}
}

// Router builds the chi router for the whole HTTP surface (spec §6).
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/api/about", s.handleAbout)
	r.Get("/api/subdomain/check", s.handleSubdomainCheck)
	r.Get("/api/subdomain/list", s.handleSubdomainList)
	r.Get("/api/subdomain/soa", s.handleSubdomainSOA)
	r.Post("/api/signup", s.handleSignup)
	r.Post("/api/signin", s.handleSignin)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.Middleware)
		r.Get("/api/profile", s.handleProfile)
		r.Get("/api/zone", s.handleGetZone)
		r.Put("/api/zone", s.handlePutZone)
		r.Post("/api/ns-mode/internal", s.handleNSModeInternal)
		r.Post("/api/ns-mode/external", s.handleNSModeExternal)
		r.Post("/api/password/change", s.handlePasswordChange)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAbout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"base_domain": s.baseDomain})
}

func (s *Server) handleSubdomainCheck(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("name")))

	if ok, _ := s.labels.Validate(name); !ok {
		writeJSON(w, http.StatusOK, map[string]bool{"available": false})
		return
	}

	_, err := s.store.Get(r.Context(), name)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"available": false})
	case err == userstore.ErrNotFound:
		writeJSON(w, http.StatusOK, map[string]bool{"available": true})
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type delegationView struct {
	Name    string   `json:"name"`
	Records []string `json:"records"`
}

func (s *Server) handleSubdomainList(w http.ResponseWriter, r *http.Request) {
	delegations, err := s.orch.ListDelegations(r.Context())
	if err != nil {
		writeAppErr(w, err)
		return
	}
	out := make([]delegationView, len(delegations))
	for i, d := range delegations {
		out[i] = delegationView{Name: d.Name, Records: d.Records}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSubdomainSOA(w http.ResponseWriter, r *http.Request) {
	soa, err := s.orch.GetParentSOA(r.Context())
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"soa": soa})
}

type signupRequest struct {
	Subdomain string `json:"subdomain"`
	Password  string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lbl := strings.ToLower(strings.TrimSpace(req.Subdomain))
	// Resolved open question (spec §9): apply the same >=8 rule on
	// signup as on password change, for consistency.
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if err := s.orch.Signup(r.Context(), lbl, req.Password); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type signinRequest struct {
	Subdomain string `json:"subdomain"`
	Password  string `json:"password"`
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lbl := strings.ToLower(strings.TrimSpace(req.Subdomain))
	ok, err := s.auth.Verify(r.Context(), lbl, req.Password)
	if err != nil {
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type profileResponse struct {
	Subdomain   string   `json:"subdomain"`
	ExternalNS  []string `json:"external_ns"`
	ExternalNS1 string   `json:"external_ns1,omitempty"`
	ExternalNS2 string   `json:"external_ns2,omitempty"`
	ExternalNS3 string   `json:"external_ns3,omitempty"`
	ExternalNS4 string   `json:"external_ns4,omitempty"`
	ExternalNS5 string   `json:"external_ns5,omitempty"`
	ExternalNS6 string   `json:"external_ns6,omitempty"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	lbl, _ := authn.LabelFromContext(r.Context())
	user, err := s.store.Get(r.Context(), lbl)
	if err != nil {
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ns := user.ExternalNS()
	resp := profileResponse{Subdomain: lbl, ExternalNS: ns}
	slots := []*string{&resp.ExternalNS1, &resp.ExternalNS2, &resp.ExternalNS3, &resp.ExternalNS4, &resp.ExternalNS5, &resp.ExternalNS6}
	for i, v := range ns {
		if i < len(slots) {
			*slots[i] = v
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	lbl, _ := authn.LabelFromContext(r.Context())
	views, err := s.orch.GetZone(r.Context(), lbl)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

type putZoneRequest struct {
	Records []struct {
		Name    string `json:"name"`
		RRType  string `json:"rrtype"`
		TTL     uint32 `json:"ttl"`
		Content string `json:"content"`
	} `json:"records"`
}

func (s *Server) handlePutZone(w http.ResponseWriter, r *http.Request) {
	lbl, _ := authn.LabelFromContext(r.Context())

	var req putZoneRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	records := make([]zone.RecordInput, len(req.Records))
	for i, rec := range req.Records {
		records[i] = zone.RecordInput{Name: rec.Name, Type: rec.RRType, TTL: rec.TTL, Content: rec.Content}
	}

	if err := s.orch.PutZone(r.Context(), lbl, records); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleNSModeInternal(w http.ResponseWriter, r *http.Request) {
	lbl, _ := authn.LabelFromContext(r.Context())
	if err := s.orch.SwitchInternal(r.Context(), lbl); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type nsModeExternalRequest struct {
	NS []string `json:"ns"`
}

func (s *Server) handleNSModeExternal(w http.ResponseWriter, r *http.Request) {
	lbl, _ := authn.LabelFromContext(r.Context())

	var req nsModeExternalRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.orch.SwitchExternal(r.Context(), lbl, req.NS); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handlePasswordChange(w http.ResponseWriter, r *http.Request) {
	lbl, _ := authn.LabelFromContext(r.Context())

	var req passwordChangeRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	ok, err := s.auth.Verify(r.Context(), lbl, req.CurrentPassword)
	if err != nil {
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	hash, err := authn.HashPassword(req.NewPassword)
	if err != nil {
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := s.store.SetPassword(r.Context(), lbl, hash); err != nil {
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeAppErr(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		writeError(w, http.StatusBadRequest, err.Error())
	case apperr.KindConflict:
		writeError(w, http.StatusConflict, err.Error())
	case apperr.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case apperr.KindAuth:
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case apperr.KindUpstream:
		log.Printf("upstream error: %v", err)
		writeError(w, http.StatusBadGateway, "upstream error")
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
