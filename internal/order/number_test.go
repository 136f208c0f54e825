package order

import (
	"strings"
	"testing"
)

func TestNewNumber_Format(t *testing.T) {
	n := NewNumber()
	if !strings.HasPrefix(n, NumberPrefix) {
		t.Errorf("order number %q missing %q prefix", n, NumberPrefix)
	}
	if rest := strings.TrimPrefix(n, NumberPrefix); rest != strings.ToUpper(rest) {
		t.Errorf("order number token %q is not uppercase", rest)
	}
}

func TestNewNumber_Unique(t *testing.T) {
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		n := NewNumber()
		if seen[n] {
			t.Fatalf("duplicate order number generated: %s", n)
		}
		seen[n] = true
	}
}
