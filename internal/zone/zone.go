// Package zone implements pure zone-naming and rrset-algebra helpers
// shared by signup, NS-mode switching and zone editing: computing zone
// names, canonicalizing FQDNs, grouping records by (name, type), and
// protecting the apex NS/SOA rrsets every delegated zone owns.
package zone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// ErrMixedTTL is returned when records sharing an owner name and type
// disagree on TTL.
var ErrMixedTTL = errors.New("rrset group has mixed ttl")

// ErrForbiddenApex is returned when a batch of records touches the
// apex NS or SOA rrset of a zone.
var ErrForbiddenApex = errors.New("apex NS/SOA is not editable")

// ErrInvalidFQDN is returned by EnsureFQDN for syntactically invalid
// input.
var ErrInvalidFQDN = errors.New("invalid fqdn")

// ErrOutsideZone is returned when a record's owner name is not the
// zone apex and not a strict subdomain of it (tenant isolation, P4).
var ErrOutsideZone = errors.New("record owner is outside the caller's zone")

// Name computes the canonical, trailing-dot zone name for a user
// label under baseDomain (baseDomain may or may not carry a trailing
// dot; the result always does).
func Name(label, baseDomain string) string {
	return dns.Fqdn(label + "." + strings.TrimSuffix(baseDomain, "."))
}

// ParentName computes the canonical parent zone name for baseDomain.
func ParentName(baseDomain string) string {
	return dns.Fqdn(strings.TrimSuffix(baseDomain, "."))
}

// IsApex reports whether name is the apex of zone, after trailing-dot
// and case normalization.
func IsApex(name, zoneName string) bool {
	return strings.EqualFold(dns.Fqdn(name), dns.Fqdn(zoneName))
}

// InZone reports whether name is the zone apex or a strict subdomain
// of it (P4 tenant isolation: records outside this set are rejected).
func InZone(name, zoneName string) bool {
	n, z := dns.Fqdn(name), dns.Fqdn(zoneName)
	return strings.EqualFold(n, z) || dns.IsSubDomain(z, n)
}

// EnsureFQDN appends a trailing dot if missing and rejects syntactically
// invalid names.
func EnsureFQDN(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidFQDN
	}
	fq := dns.Fqdn(s)
	for _, label := range dns.SplitDomainName(fq) {
		if label == "" {
			return "", ErrInvalidFQDN
		}
	}
	return strings.ToLower(fq), nil
}

// RecordInput is a single caller-supplied record prior to grouping.
type RecordInput struct {
	Name    string
	Type    string
	TTL     uint32
	Content string
}

// RRGroup is the set of records sharing an owner name and type.
type RRGroup struct {
	Name    string
	Type    string
	TTL     uint32
	Content []string
}

// Key uniquely identifies an rrset within a zone.
type Key struct {
	Name string
	Type string
}

// Group canonicalizes and groups records by (name, type), rejecting any
// group whose members disagree on TTL.
func Group(records []RecordInput) (map[Key]RRGroup, error) {
	out := make(map[Key]RRGroup)
	for _, r := range records {
		name, err := EnsureFQDN(r.Name)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", r.Name, err)
		}
		rtype := strings.ToUpper(strings.TrimSpace(r.Type))
		key := Key{Name: name, Type: rtype}

		g, ok := out[key]
		if !ok {
			g = RRGroup{Name: name, Type: rtype, TTL: r.TTL}
		} else if g.TTL != r.TTL {
			return nil, fmt.Errorf("%s %s: %w", name, rtype, ErrMixedTTL)
		}
		g.Content = append(g.Content, r.Content)
		out[key] = g
	}
	return out, nil
}

// ForbidApexNSSOA returns ErrForbiddenApex if any group key addresses
// the zone apex's NS or SOA rrset.
func ForbidApexNSSOA(groups map[Key]RRGroup, zoneName string) error {
	for k := range groups {
		if IsApex(k.Name, zoneName) && (k.Type == "NS" || k.Type == "SOA") {
			return ErrForbiddenApex
		}
	}
	return nil
}

// ForbidOutsideZone returns ErrOutsideZone if any group key's owner
// name falls outside zoneName (P4).
func ForbidOutsideZone(groups map[Key]RRGroup, zoneName string) error {
	for k := range groups {
		if !InZone(k.Name, zoneName) {
			return fmt.Errorf("%s: %w", k.Name, ErrOutsideZone)
		}
	}
	return nil
}

// FilterVisible drops apex NS and apex SOA groups from a grouped record
// set (I5).
func FilterVisible(groups map[Key]RRGroup, zoneName string) map[Key]RRGroup {
	out := make(map[Key]RRGroup, len(groups))
	for k, g := range groups {
		if IsApex(k.Name, zoneName) && (k.Type == "NS" || k.Type == "SOA") {
			continue
		}
		out[k] = g
	}
	return out
}
