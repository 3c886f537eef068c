package identifier

import (
	"strings"
	"testing"
)

func TestGenerateFormat(t *testing.T) {
	id := Generate("PR", "org-abc123def456")
	parts := strings.Split(id, "-")
	if len(parts) != 4 {
		t.Fatalf("Expected 4 hyphen-joined segments, got %d in %q", len(parts), id)
	}
	if parts[0] != "PR" {
		t.Errorf("Expected PR prefix, got %q", parts[0])
	}
	// Org segment: uppercased, alphanumeric only, last 6 chars
	if parts[1] != "DEF456" {
		t.Errorf("Expected org segment DEF456, got %q", parts[1])
	}
	if len(parts[3]) != 4 {
		t.Errorf("Expected 4-char random segment, got %q", parts[3])
	}
	for _, r := range parts[3] {
		if !strings.ContainsRune("0123456789ABCDEF", r) {
			t.Errorf("Expected uppercase hex random segment, got %q", parts[3])
		}
	}
}

func TestSanitizeOrgID(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"org-abc123def456", "DEF456"},
		{"ABC", "ABC"},
		{"a!b@c#", "ABC"},
		{"", "ORG"},
		{"---", "ORG"},
	}
	for _, c := range cases {
		if got := sanitizeOrgID(c.in); got != c.want {
			t.Errorf("sanitizeOrgID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPrefixHelpers(t *testing.T) {
	if !strings.HasPrefix(NewRequestNumber("org1"), "PR-") {
		t.Error("Expected PR- prefix")
	}
	if !strings.HasPrefix(NewPONumber("org1"), "PO-") {
		t.Error("Expected PO- prefix")
	}
}

func TestGenerateUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := Generate("PO", "sameorg")
		if seen[id] {
			t.Fatalf("Duplicate identifier generated: %q", id)
		}
		seen[id] = true
	}
}
