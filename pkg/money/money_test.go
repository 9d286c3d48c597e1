package money

import (
	"encoding/json"
	"testing"
)

func TestNormalizeFormattedStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want int64
	}{
		{"KSh 1,250,000", 1250000},
		{"1,250,000.75", 1250000},
		{"KES 45,000/=", 45000},
		{"  85000 ", 85000},
		{"abc", 0},
		{"", 0},
		{"-5", 0},
		{"1.2.3", 0},
		{"3000000000", 3000000000},
	}

	for _, tt := range tests {
		if got := NormalizeString(tt.raw); got != tt.want {
			t.Fatalf("NormalizeString(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeNumericInputs(t *testing.T) {
	t.Parallel()

	if got := Normalize(int64(3000000000)); got != 3000000000 {
		t.Fatalf("int64 beyond 32-bit range mangled: %d", got)
	}
	if got := Normalize(-5); got != 0 {
		t.Fatalf("negative int should normalize to 0, got %d", got)
	}
	if got := Normalize(120000.99); got != 120000 {
		t.Fatalf("float fraction should truncate, got %d", got)
	}
	if got := Normalize(json.Number("1250000")); got != 1250000 {
		t.Fatalf("json.Number mishandled: %d", got)
	}
	if got := Normalize(struct{}{}); got != 0 {
		t.Fatalf("unsupported type should normalize to 0, got %d", got)
	}
	if got := Normalize(nil); got != 0 {
		t.Fatalf("nil should normalize to 0, got %d", got)
	}
}
