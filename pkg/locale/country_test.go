package locale

import "testing"

func TestDetectRegion(t *testing.T) {
	tests := []struct {
		tz   string
		want string
	}{
		{"Europe/Madrid", "ES"},
		{"europe/madrid", "ES"},
		{"Atlantic/Canary", "ES"},
		{"Europe/Lisbon", "PT"},
		{"America/Chicago", "US"},
		{"Asia/Tokyo", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.tz, func(t *testing.T) {
			if got := DetectRegion(tt.tz); got != tt.want {
				t.Errorf("DetectRegion(%q) = %q, want %q", tt.tz, got, tt.want)
			}
		})
	}
}
