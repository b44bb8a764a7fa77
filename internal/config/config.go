// Package config loads and validates process-wide configuration (spec
// §3 Configuration, §6 process startup). Required settings are checked
// before the listener opens; the listen address, database path and PDNS
// server IDs fall back to defaults, and the child SOA and reserved-label
// list are optional.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/miekg/dns"
)

// PDNSEndpoint is one {url, key, server_id} triple addressing a
// PowerDNS authoritative instance.
type PDNSEndpoint struct {
	URL      string
	APIKey   string
	ServerID string
}

// Config is the fully validated process configuration.
type Config struct {
	HTTPListen string
	DBPath     string

	BaseDomain string   // normalized, no trailing dot
	InternalNS []string // normalized, trailing dot forced

	DisallowedLabels []string

	SubPDNS  PDNSEndpoint
	BasePDNS PDNSEndpoint

	// ChildSOA is an optional operator-templated SOA rdata REPLACEd
	// onto new child zones; empty defers to the sub-PDNS creation
	// default (spec §9 open question, resolved explicitly here).
	ChildSOA string
}

// Load reads configuration from the environment and validates it
// eagerly, following the teacher's envOrDefault style, generalized to
// return an error instead of silently defaulting fields this system
// treats as mandatory.
func Load() (Config, error) {
	cfg := Config{
		HTTPListen: envOrDefault("HTTP_LISTEN", ":8080"),
		DBPath:     envOrDefault("DB_PATH", "satsuki.db"),
		ChildSOA:   strings.TrimSpace(os.Getenv("CHILD_SOA")),
	}

	baseDomain := strings.TrimSpace(os.Getenv("BASE_DOMAIN"))
	if baseDomain == "" {
		return Config{}, fmt.Errorf("BASE_DOMAIN is required")
	}
	cfg.BaseDomain = strings.ToLower(strings.TrimSuffix(dns.Fqdn(baseDomain), "."))

	internalNS := splitCSV(os.Getenv("INTERNAL_NS"))
	if len(internalNS) == 0 {
		return Config{}, fmt.Errorf("INTERNAL_NS is required (comma-separated FQDNs)")
	}
	for _, ns := range internalNS {
		cfg.InternalNS = append(cfg.InternalNS, dns.Fqdn(ns))
	}

	cfg.DisallowedLabels = splitCSV(os.Getenv("DISALLOWED_LABELS"))

	var err error
	cfg.SubPDNS, err = loadEndpoint("SUB_PDNS")
	if err != nil {
		return Config{}, err
	}
	cfg.BasePDNS, err = loadEndpoint("BASE_PDNS")
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadEndpoint(prefix string) (PDNSEndpoint, error) {
	url := strings.TrimSpace(os.Getenv(prefix + "_URL"))
	if url == "" {
		return PDNSEndpoint{}, fmt.Errorf("%s_URL is required", prefix)
	}
	key := strings.TrimSpace(os.Getenv(prefix + "_API_KEY"))
	if key == "" {
		return PDNSEndpoint{}, fmt.Errorf("%s_API_KEY is required", prefix)
	}
	serverID := envOrDefault(prefix+"_SERVER_ID", "localhost")
	return PDNSEndpoint{URL: url, APIKey: key, ServerID: serverID}, nil
}

// splitCSV splits a comma-separated env value into trimmed, non-empty
// fields. An unset or blank-only value yields a nil slice rather than
// a slice holding one empty string.
func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envOrDefault reads key from the environment, falling back when it's
// unset or holds only whitespace.
func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
