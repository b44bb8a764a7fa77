package label

import "testing"

func TestValidatePurity(t *testing.T) {
	p := NewPolicy(nil)

	cases := []struct {
		in     string
		wantOK bool
		reason Reason
	}{
		{"", false, ReasonEmpty},
		{"alice", true, ReasonNone},
		{"a-b-c", true, ReasonNone},
		{"-alice", false, ReasonLeadingOrTrailing},
		{"alice-", false, ReasonLeadingOrTrailing},
		{"al--ice", false, ReasonDoubleHyphen},
		{"Alice", false, ReasonIllegalCharacter},
		{"www", false, ReasonReserved},
		{"a", true, ReasonNone},
	}

	for _, c := range cases {
		ok, reason := p.Validate(c.in)
		if ok != c.wantOK || reason != c.reason {
			t.Errorf("Validate(%q) = (%v, %v), want (%v, %v)", c.in, ok, reason, c.wantOK, c.reason)
		}
	}
}

func TestValidateTooLong(t *testing.T) {
	p := NewPolicy(nil)
	long := ""
	for i := 0; i < 64; i++ {
		long += "a"
	}
	ok, reason := p.Validate(long)
	if ok || reason != ReasonTooLong {
		t.Fatalf("expected too_long rejection, got ok=%v reason=%v", ok, reason)
	}
}

func TestCustomReservedSet(t *testing.T) {
	p := NewPolicy([]string{"operator"})
	if ok, _ := p.Validate("www"); !ok {
		t.Fatal("expected www to be allowed once the reserved set is replaced")
	}
	if ok, reason := p.Validate("operator"); ok || reason != ReasonReserved {
		t.Fatalf("expected operator to be reserved, got ok=%v reason=%v", ok, reason)
	}
}
