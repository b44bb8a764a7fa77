package userstore

import "time"

// NSMode selects whether a label's delegated zone is served by the
// sub-PDNS (internal) or points at operator-supplied external
// nameservers.
type NSMode int

const (
	// ModeInternal is the default: the sub-PDNS instance is
	// authoritative and the base-PDNS apex NS rrset points at it.
	ModeInternal NSMode = 0
	// ModeExternal means the base-PDNS apex NS rrset points at the
	// user's own external nameservers instead.
	ModeExternal NSMode = 1
)

// User is the persisted row for one signed-up label (spec §6
// persisted-state layout, component C).
type User struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	Label         string `gorm:"column:label;size:63;uniqueIndex"`
	PasswordHash  string `gorm:"column:password_hash;size:255;not null"`
	NSMode        NSMode `gorm:"column:ns_mode;not null;default:0"`
	ExternalNS1   *string
	ExternalNS2   *string
	ExternalNS3   *string
	ExternalNS4   *string
	ExternalNS5   *string
	ExternalNS6   *string
	CreatedAt     time.Time `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null"`
	LastLoginAt   *time.Time `gorm:"column:last_login_at"`
}

// TableName pins the GORM table name independent of struct renames.
func (User) TableName() string {
	return "users"
}

// ExternalNS returns the user's configured external nameservers, in
// order, omitting unset slots.
func (u User) ExternalNS() []string {
	slots := []*string{u.ExternalNS1, u.ExternalNS2, u.ExternalNS3, u.ExternalNS4, u.ExternalNS5, u.ExternalNS6}
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		if s != nil && *s != "" {
			out = append(out, *s)
		}
	}
	return out
}

func externalNSColumns(ns []string) (n1, n2, n3, n4, n5, n6 *string) {
	slots := make([]*string, 6)
	for i := 0; i < len(ns) && i < 6; i++ {
		v := ns[i]
		slots[i] = &v
	}
	return slots[0], slots[1], slots[2], slots[3], slots[4], slots[5]
}
