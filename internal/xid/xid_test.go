package xid

import (
	"strings"
	"testing"
)

func TestNewIsPrefixedAndUnique(t *testing.T) {
	seen := make(map[string]bool, 100)
	for i := 0; i < 100; i++ {
		id := New("req")
		if !strings.HasPrefix(id, "req-") {
			t.Fatalf("expected req- prefix, got %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if strings.Contains(New(""), "-") {
		t.Fatalf("expected bare id without prefix")
	}
}
