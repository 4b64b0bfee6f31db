package main

import "testing"

func TestSyncWindow(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		monthsBack int
		wantStart  string
		wantEnd    string
		wantErr    bool
	}{
		{"defaults", "", "", 12, "2024-07", "2025-06", false},
		{"single month back", "", "", 1, "2025-06", "2025-06", false},
		{"non-positive months back", "", "", 0, "2025-06", "2025-06", false},
		{"explicit end", "", "2025-03", 3, "2025-01", "2025-03", false},
		{"explicit range", "2025-01", "2025-02", 12, "2025-01", "2025-02", false},
		{"reversed", "2025-05", "2025-02", 12, "", "", true},
		{"bad start", "June", "", 12, "", "", true},
		{"bad end", "", "2025-13", 12, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := syncWindow(tt.start, tt.end, "2025-06", tt.monthsBack)
			if (err != nil) != tt.wantErr {
				t.Fatalf("syncWindow() error = %v, wantErr %v", err, tt.wantErr)
			}
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("syncWindow() = (%s, %s), want (%s, %s)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
