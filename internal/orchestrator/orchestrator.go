// Package orchestrator implements the delegation orchestrator
// (component F): the saga that provisions and mutates state across the
// sub-PDNS instance, the base-PDNS instance, and the local user store.
package orchestrator

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/satsuki-dns/pdns-frontend/internal/apperr"
	"github.com/satsuki-dns/pdns-frontend/internal/label"
	"github.com/satsuki-dns/pdns-frontend/internal/pdns"
	"github.com/satsuki-dns/pdns-frontend/internal/userstore"
	"github.com/satsuki-dns/pdns-frontend/internal/zone"
)

// Hasher is the subset of component B the orchestrator needs. Kept as
// a capability interface (per spec §9) so tests can stub it.
type Hasher interface {
	Hash(plain string) (string, error)
}

// Config is the orchestrator's process-wide, immutable configuration
// slice (spec §3 Configuration, §9 "pass by reference").
type Config struct {
	BaseDomain string   // no trailing dot, e.g. "example.com"
	InternalNS []string // trailing-dot FQDNs, e.g. ["ns1.example.net."]

	// ChildSOA, if non-empty, is REPLACEd onto every new child zone's
	// apex SOA during signup. Left empty, the child zone's SOA is
	// whatever the sub-PDNS template produces on zone creation — the
	// spec leaves the source of the child SOA an open question (§9)
	// and asks implementations to make the choice explicit in
	// configuration rather than infer it.
	ChildSOA string
}

func (c Config) parentZone() string {
	return zone.ParentName(c.BaseDomain)
}

func (c Config) childZone(lbl string) string {
	return zone.Name(lbl, c.BaseDomain)
}

// Orchestrator is component F.
type Orchestrator struct {
	cfg    Config
	sub    *pdns.Client
	base   *pdns.Client
	store  *userstore.Store
	hasher Hasher
	labels *label.Policy

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New builds an Orchestrator. sub is the sub-PDNS instance hosting
// child zones; base is the base-PDNS instance hosting the parent zone.
func New(cfg Config, sub, base *pdns.Client, store *userstore.Store, hasher Hasher, labels *label.Policy) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		sub:    sub,
		base:   base,
		store:  store,
		hasher: hasher,
		labels: labels,
		locks:  make(map[string]*sync.Mutex),
	}
}

// lockLabel returns the per-label advisory mutex, creating it on first
// use (spec §5 per-label serialization).
func (o *Orchestrator) lockLabel(lbl string) *sync.Mutex {
	o.locksMu.Lock()
	defer o.locksMu.Unlock()
	m, ok := o.locks[lbl]
	if !ok {
		m = &sync.Mutex{}
		o.locks[lbl] = m
	}
	return m
}

// ZoneRecordView is one flattened record (name, type, ttl, content and,
// for MX/SRV, the split-off priority) returned by GetZone (spec §4.F.5).
type ZoneRecordView struct {
	Name     string `json:"name"`
	RRType   string `json:"rrtype"`
	TTL      uint32 `json:"ttl"`
	Content  string `json:"content"`
	Priority *int   `json:"priority,omitempty"`
}

// Delegation is one owner name and its NS record set in the parent
// zone, including the apex entry (spec §4.F.6).
type Delegation struct {
	Name    string   `json:"name"`
	Records []string `json:"records"`
}

// Signup runs the primary sequential saga (spec §4.F.1). On any
// failure in steps 2-5 it compensates completed steps in reverse
// order and returns an *apperr.Error describing the originating
// failure.
func (o *Orchestrator) Signup(ctx context.Context, lbl, password string) error {
	if ok, reason := o.labels.Validate(lbl); !ok {
		return apperr.Validation("%s", reason.Message())
	}

	mu := o.lockLabel(lbl)
	mu.Lock()
	defer mu.Unlock()

	opID := uuid.NewString()
	child := o.cfg.childZone(lbl)
	parentDelegationName := child

	// Step 1: hash.
	hash, err := o.hasher.Hash(password)
	if err != nil {
		return apperr.Internal(err, "hash password")
	}

	// Step 2: create child zone.
	if err := o.sub.CreateZone(ctx, pdns.ZoneCreate{
		Name:        child,
		Kind:        pdns.KindNative,
		Nameservers: o.cfg.InternalNS,
	}); err != nil {
		if pdns.IsConflict(err) {
			return apperr.Conflict("subdomain %q is taken", lbl)
		}
		return apperr.Upstream(err, "create child zone")
	}

	compChildZone := func() {
		o.compensate(opID, "delete child zone", func() error {
			err := o.sub.DeleteZone(context.Background(), child)
			if pdns.IsNotFound(err) {
				return nil
			}
			return err
		})
	}

	// Step 3: fix child apex NS (and SOA, if templated).
	childRRsets := []pdns.RRset{{
		Name:       child,
		Type:       "NS",
		TTL:        3600,
		ChangeType: pdns.ChangeTypeReplace,
		Records:    toRecords(o.cfg.InternalNS),
	}}
	if o.cfg.ChildSOA != "" {
		childRRsets = append(childRRsets, pdns.RRset{
			Name:       child,
			Type:       "SOA",
			TTL:        3600,
			ChangeType: pdns.ChangeTypeReplace,
			Records:    toRecords([]string{o.cfg.ChildSOA}),
		})
	}
	if err := o.sub.PatchRRsets(ctx, child, childRRsets); err != nil {
		compChildZone()
		return apperr.Upstream(err, "fix child zone apex")
	}

	// Step 4: delegate in parent.
	if err := o.base.PatchRRsets(ctx, o.cfg.parentZone(), []pdns.RRset{{
		Name:       parentDelegationName,
		Type:       "NS",
		TTL:        3600,
		ChangeType: pdns.ChangeTypeReplace,
		Records:    toRecords(o.cfg.InternalNS),
	}}); err != nil {
		compChildZone()
		return apperr.Upstream(err, "delegate in parent zone")
	}

	compDelegation := func() {
		o.compensate(opID, "delete parent delegation", func() error {
			return o.base.PatchRRsets(context.Background(), o.cfg.parentZone(), []pdns.RRset{{
				Name:       parentDelegationName,
				Type:       "NS",
				ChangeType: pdns.ChangeTypeDelete,
			}})
		})
	}

	// Step 5: insert user row.
	if _, err := o.store.Create(ctx, lbl, hash); err != nil {
		compDelegation()
		compChildZone()
		if err == userstore.ErrLabelTaken {
			return apperr.Conflict("subdomain %q is taken", lbl)
		}
		return apperr.Internal(err, "create user row")
	}

	return nil
}

// compensate runs step once, retries once on failure, and logs any
// remaining failure with full context (spec §4.F.1, §7). Compensation
// errors never change the outer response.
func (o *Orchestrator) compensate(opID, what string, step func() error) {
	if err := step(); err != nil {
		if err2 := step(); err2 != nil {
			log.Printf("op=%s compensation failed: %s: first_error=%v retry_error=%v", opID, what, err, err2)
		}
	}
}

// SwitchExternal implements spec §4.F.2.
func (o *Orchestrator) SwitchExternal(ctx context.Context, lbl string, ns []string) error {
	if len(ns) < 1 || len(ns) > 6 {
		return apperr.Validation("ns list must contain 1 to 6 entries")
	}
	normalized := make([]string, len(ns))
	for i, n := range ns {
		fq, err := zone.EnsureFQDN(n)
		if err != nil {
			return apperr.Validation("invalid nameserver %q", n)
		}
		normalized[i] = fq
	}

	mu := o.lockLabel(lbl)
	mu.Lock()
	defer mu.Unlock()

	user, err := o.store.Get(ctx, lbl)
	if err != nil {
		if err == userstore.ErrNotFound {
			return apperr.NotFound("no such user")
		}
		return apperr.Internal(err, "load user")
	}

	if err := o.base.PatchRRsets(ctx, o.cfg.parentZone(), []pdns.RRset{{
		Name:       o.cfg.childZone(lbl),
		Type:       "NS",
		TTL:        3600,
		ChangeType: pdns.ChangeTypeReplace,
		Records:    toRecords(normalized),
	}}); err != nil {
		return apperr.Upstream(err, "replace parent delegation")
	}

	if err := o.store.SetExternal(ctx, lbl, normalized); err != nil {
		opID := uuid.NewString()
		revertTo := o.cfg.InternalNS
		if user.NSMode == userstore.ModeExternal {
			revertTo = user.ExternalNS()
		}
		o.compensate(opID, "revert parent delegation after store failure", func() error {
			return o.base.PatchRRsets(context.Background(), o.cfg.parentZone(), []pdns.RRset{{
				Name:       o.cfg.childZone(lbl),
				Type:       "NS",
				TTL:        3600,
				ChangeType: pdns.ChangeTypeReplace,
				Records:    toRecords(revertTo),
			}})
		})
		return apperr.Internal(err, "persist external ns mode")
	}

	return nil
}

// SwitchInternal implements spec §4.F.3.
func (o *Orchestrator) SwitchInternal(ctx context.Context, lbl string) error {
	mu := o.lockLabel(lbl)
	mu.Lock()
	defer mu.Unlock()

	if _, err := o.store.Get(ctx, lbl); err != nil {
		if err == userstore.ErrNotFound {
			return apperr.NotFound("no such user")
		}
		return apperr.Internal(err, "load user")
	}

	if err := o.base.PatchRRsets(ctx, o.cfg.parentZone(), []pdns.RRset{{
		Name:       o.cfg.childZone(lbl),
		Type:       "NS",
		TTL:        3600,
		ChangeType: pdns.ChangeTypeReplace,
		Records:    toRecords(o.cfg.InternalNS),
	}}); err != nil {
		return apperr.Upstream(err, "replace parent delegation")
	}

	if err := o.store.SetInternal(ctx, lbl); err != nil {
		opID := uuid.NewString()
		o.compensate(opID, "revert parent delegation after store failure", func() error {
			return o.base.PatchRRsets(context.Background(), o.cfg.parentZone(), []pdns.RRset{{
				Name:       o.cfg.childZone(lbl),
				Type:       "NS",
				TTL:        3600,
				ChangeType: pdns.ChangeTypeReplace,
				Records:    toRecords(o.cfg.InternalNS),
			}})
		})
		return apperr.Internal(err, "persist internal ns mode")
	}

	return nil
}

// PutZone implements spec §4.F.4: a full replace of the user-visible
// rrset surface, preserving the apex.
func (o *Orchestrator) PutZone(ctx context.Context, lbl string, records []zone.RecordInput) error {
	mu := o.lockLabel(lbl)
	mu.Lock()
	defer mu.Unlock()

	zoneName := o.cfg.childZone(lbl)

	groups, err := zone.Group(records)
	if err != nil {
		return apperr.Validation("%v", err)
	}
	if err := zone.ForbidOutsideZone(groups, zoneName); err != nil {
		return apperr.Validation("%v", err)
	}
	if err := zone.ForbidApexNSSOA(groups, zoneName); err != nil {
		return apperr.Validation("%v", err)
	}

	existingZone, err := o.sub.GetZone(ctx, zoneName)
	if err != nil {
		return apperr.Upstream(err, "load existing zone")
	}

	existing := make(map[zone.Key]struct{})
	for _, rr := range existingZone.RRsets {
		if zone.IsApex(rr.Name, zoneName) && (rr.Type == "NS" || rr.Type == "SOA") {
			continue
		}
		existing[zone.Key{Name: rr.Name, Type: rr.Type}] = struct{}{}
	}

	var patch []pdns.RRset
	for k, g := range groups {
		patch = append(patch, pdns.RRset{
			Name:       k.Name,
			Type:       k.Type,
			TTL:        g.TTL,
			ChangeType: pdns.ChangeTypeReplace,
			Records:    toRecords(g.Content),
		})
		delete(existing, k)
	}
	for k := range existing {
		patch = append(patch, pdns.RRset{
			Name:       k.Name,
			Type:       k.Type,
			ChangeType: pdns.ChangeTypeDelete,
		})
	}

	if len(patch) == 0 {
		return nil
	}
	if err := o.sub.PatchRRsets(ctx, zoneName, patch); err != nil {
		return apperr.Upstream(err, "apply zone records")
	}
	return nil
}

// GetZone implements spec §4.F.5.
func (o *Orchestrator) GetZone(ctx context.Context, lbl string) ([]ZoneRecordView, error) {
	zoneName := o.cfg.childZone(lbl)

	z, err := o.sub.GetZone(ctx, zoneName)
	if err != nil {
		if pdns.IsNotFound(err) {
			return nil, apperr.NotFound("no such zone")
		}
		return nil, apperr.Upstream(err, "load zone")
	}

	var out []ZoneRecordView
	for _, rr := range z.RRsets {
		if zone.IsApex(rr.Name, zoneName) && (rr.Type == "NS" || rr.Type == "SOA") {
			continue
		}
		for _, rec := range rr.Records {
			content := rec.Content
			var priority *int
			if rr.Type == "MX" || rr.Type == "SRV" {
				if p, rest, ok := splitPriority(content); ok {
					priority = &p
					content = rest
				}
			}
			out = append(out, ZoneRecordView{
				Name:     rr.Name,
				RRType:   rr.Type,
				TTL:      rr.TTL,
				Content:  content,
				Priority: priority,
			})
		}
	}
	return out, nil
}

// ListDelegations implements spec §4.F.6: unauthenticated, read-only,
// no store access.
func (o *Orchestrator) ListDelegations(ctx context.Context) ([]Delegation, error) {
	z, err := o.base.GetZone(ctx, o.cfg.parentZone())
	if err != nil {
		return nil, apperr.Upstream(err, "load parent zone")
	}

	var out []Delegation
	for _, rr := range z.RRsets {
		if rr.Type != "NS" {
			continue
		}
		contents := make([]string, len(rr.Records))
		for i, rec := range rr.Records {
			contents[i] = rec.Content
		}
		out = append(out, Delegation{Name: rr.Name, Records: contents})
	}
	return out, nil
}

// GetParentSOA returns the parent apex SOA rdata, used by
// GET /api/subdomain/soa.
func (o *Orchestrator) GetParentSOA(ctx context.Context) (string, error) {
	z, err := o.base.GetZone(ctx, o.cfg.parentZone())
	if err != nil {
		return "", apperr.Upstream(err, "load parent zone")
	}
	for _, rr := range z.RRsets {
		if rr.Type == "SOA" && zone.IsApex(rr.Name, o.cfg.parentZone()) && len(rr.Records) > 0 {
			return rr.Records[0].Content, nil
		}
	}
	return "", apperr.NotFound("parent zone has no apex SOA")
}

func toRecords(contents []string) []pdns.Record {
	out := make([]pdns.Record, len(contents))
	for i, c := range contents {
		out[i] = pdns.Record{Content: c}
	}
	return out
}

// splitPriority splits a leading integer and one space off content,
// as PDNS encodes MX/SRV priority inline (spec §4.F.5).
func splitPriority(content string) (int, string, bool) {
	parts := strings.SplitN(content, " ", 2)
	if len(parts) != 2 {
		return 0, content, false
	}
	p, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, content, false
	}
	return p, parts[1], true
}
