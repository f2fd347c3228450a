package repository

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	ts := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      any
		want    string
		wantErr bool
	}{
		{"time", ts, "2025-03-09", false},
		{"time pointer", &ts, "2025-03-09", false},
		{"nil time pointer", (*time.Time)(nil), "", true},
		{"canonical string", "2025-03-09", "2025-03-09", false},
		{"bytes", []byte("2025-03-09"), "2025-03-09", false},
		{"rfc3339", "2025-03-09T00:00:00Z", "2025-03-09", false},
		{"sqlite datetime", "2025-03-09 14:30:00", "2025-03-09", false},
		{"padded", "  2025-03-09 ", "2025-03-09", false},
		{"short", "2025-3-9", "", true},
		{"garbage", "not a date", "", true},
		{"unsupported type", 20250309, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeDate(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeDate(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
