// Package pdns is a typed client for the PowerDNS authoritative HTTP
// API (component D). Two independent Client instances address the
// sub-delegate PDNS and the base-zone PDNS respectively; neither
// instance knows about the other.
package pdns

// Zone is the PDNS zone representation (GET /zones/{id}).
// https://doc.powerdns.com/authoritative/http-api/zone.html
type Zone struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Type        string   `json:"type,omitempty"`
	Kind        string   `json:"kind,omitempty"`
	Nameservers []string `json:"nameservers,omitempty"`
	RRsets      []RRset  `json:"rrsets,omitempty"`
}

// RRset is a resource record set: every record sharing an owner name
// and type.
type RRset struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	TTL        uint32    `json:"ttl,omitempty"`
	ChangeType string    `json:"changetype,omitempty"`
	Records    []Record  `json:"records,omitempty"`
	Comments   []Comment `json:"comments,omitempty"`
}

// Record is a single record's content within an RRset.
type Record struct {
	Content  string `json:"content"`
	Disabled bool   `json:"disabled"`
}

// Comment is metadata attached to an RRset; unused by this frontend
// but round-tripped so PATCH bodies built from a prior GET don't drop
// operator-added comments.
type Comment struct {
	Content    string `json:"content"`
	Account    string `json:"account,omitempty"`
	ModifiedAt int64  `json:"modified_at,omitempty"`
}

// ZoneCreate is the payload accepted by POST /zones.
type ZoneCreate struct {
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	Nameservers []string `json:"nameservers,omitempty"`
}

// ZonePatch is the payload accepted by PATCH /zones/{id}.
type ZonePatch struct {
	RRsets []RRset `json:"rrsets"`
}

// apiError is the error body PDNS returns on non-2xx responses.
type apiError struct {
	Error string `json:"error"`
}

const (
	// ChangeTypeReplace upserts an rrset.
	ChangeTypeReplace = "REPLACE"
	// ChangeTypeDelete removes an rrset entirely.
	ChangeTypeDelete = "DELETE"

	// KindNative is the zone kind used throughout this frontend; PDNS
	// replication between sub/base instances is out of scope (spec
	// Non-goals).
	KindNative = "Native"
)
