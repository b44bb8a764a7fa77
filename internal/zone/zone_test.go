package zone

import "testing"

func TestName(t *testing.T) {
	got := Name("alice", "example.com")
	if got != "alice.example.com." {
		t.Fatalf("unexpected zone name: %q", got)
	}
}

func TestIsApex(t *testing.T) {
	if !IsApex("Alice.Example.Com", "alice.example.com.") {
		t.Fatal("expected case/trailing-dot insensitive apex match")
	}
	if IsApex("www.alice.example.com.", "alice.example.com.") {
		t.Fatal("did not expect non-apex name to match")
	}
}

func TestInZoneTenantIsolation(t *testing.T) {
	zoneName := "alice.example.com."
	if !InZone("alice.example.com.", zoneName) {
		t.Fatal("apex itself must be in zone")
	}
	if !InZone("www.alice.example.com.", zoneName) {
		t.Fatal("subdomain of zone must be in zone")
	}
	if InZone("bob.example.com.", zoneName) {
		t.Fatal("sibling zone must not be in zone")
	}
	if InZone("evil-alice.example.com.", zoneName) {
		t.Fatal("lookalike owner must not be treated as in-zone")
	}
}

func TestGroupMixedTTLRejected(t *testing.T) {
	_, err := Group([]RecordInput{
		{Name: "www.example.com.", Type: "A", TTL: 300, Content: "192.0.2.1"},
		{Name: "www.example.com.", Type: "A", TTL: 600, Content: "192.0.2.2"},
	})
	if err == nil {
		t.Fatal("expected mixed TTL error")
	}
}

func TestForbidApexNSSOA(t *testing.T) {
	groups, err := Group([]RecordInput{
		{Name: "alice.example.com.", Type: "NS", TTL: 300, Content: "ns9.evil."},
	})
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if err := ForbidApexNSSOA(groups, "alice.example.com."); err != ErrForbiddenApex {
		t.Fatalf("expected ErrForbiddenApex, got %v", err)
	}
}

func TestForbidOutsideZone(t *testing.T) {
	groups, err := Group([]RecordInput{
		{Name: "bob.example.com.", Type: "A", TTL: 300, Content: "192.0.2.1"},
	})
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if err := ForbidOutsideZone(groups, "alice.example.com."); err == nil {
		t.Fatal("expected ErrOutsideZone")
	}
}

func TestEnsureFQDN(t *testing.T) {
	got, err := EnsureFQDN("  Alice.Example.Com ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "alice.example.com." {
		t.Fatalf("unexpected normalized fqdn: %q", got)
	}
	if _, err := EnsureFQDN(""); err == nil {
		t.Fatal("expected error for empty input")
	}
}
