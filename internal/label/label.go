// Package label validates and classifies the leftmost DNS label a
// signing-up user chooses for their delegated subdomain.
package label

import (
	"regexp"
	"strings"
)

// Reason classifies why a label was rejected.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonEmpty             Reason = "empty"
	ReasonTooLong           Reason = "too_long"
	ReasonIllegalCharacter  Reason = "illegal_character"
	ReasonLeadingOrTrailing Reason = "leading_or_trailing_hyphen"
	ReasonDoubleHyphen      Reason = "double_hyphen"
	ReasonReserved          Reason = "reserved"
)

const maxLength = 63

var labelRe = regexp.MustCompile(`^[a-z0-9-]+$`)

// DefaultReserved is the operator's starting reserved-name set; it may
// be replaced wholesale at startup (spec §4.A).
var DefaultReserved = []string{
	"www", "mail", "ftp", "smtp", "email", "example", "invalid", "localhost", "test",
}

// Policy holds the reserved-label set a deployment validates against.
type Policy struct {
	reserved map[string]struct{}
}

// NewPolicy builds a Policy from a reserved-label set. An empty set
// falls back to DefaultReserved.
func NewPolicy(reserved []string) *Policy {
	if len(reserved) == 0 {
		reserved = DefaultReserved
	}
	set := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		set[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}
	return &Policy{reserved: set}
}

// Validate reports whether label is a legal, non-reserved subdomain
// label (spec invariant I1 / property P1).
func (p *Policy) Validate(l string) (bool, Reason) {
	if l == "" {
		return false, ReasonEmpty
	}
	if len(l) > maxLength {
		return false, ReasonTooLong
	}
	if !labelRe.MatchString(l) {
		return false, ReasonIllegalCharacter
	}
	if strings.HasPrefix(l, "-") || strings.HasSuffix(l, "-") {
		return false, ReasonLeadingOrTrailing
	}
	if strings.Contains(l, "--") {
		return false, ReasonDoubleHyphen
	}
	if _, reserved := p.reserved[l]; reserved {
		return false, ReasonReserved
	}
	return true, ReasonNone
}

// Message renders a short human-readable rejection message.
func (r Reason) Message() string {
	switch r {
	case ReasonEmpty:
		return "subdomain is empty"
	case ReasonTooLong:
		return "subdomain too long (max 63 characters)"
	case ReasonIllegalCharacter:
		return "subdomain contains invalid characters (only a-z, 0-9, and '-' allowed)"
	case ReasonLeadingOrTrailing:
		return "subdomain must not start or end with '-'"
	case ReasonDoubleHyphen:
		return "subdomain must not contain consecutive '--'"
	case ReasonReserved:
		return "subdomain is reserved"
	default:
		return ""
	}
}
