package tui

import (
	"strings"
	"testing"
)

func u64(v uint64) *uint64 { return &v }

func TestSizeCell(t *testing.T) {
	tests := []struct {
		name   string
		value  *uint64
		approx bool
		want   string
	}{
		{"missing", nil, false, "?"},
		{"native", u64(2048), false, "2.0 kB"},
		{"approximated", u64(2048), true, "~2.0 kB"},
		{"zero", u64(0), false, "0 B"},
	}

	for _, tt := range tests {
		if got := sizeCell(tt.value, tt.approx); got != tt.want {
			t.Errorf("%s: sizeCell = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCountCell(t *testing.T) {
	if got := countCell(nil, false); got != "?" {
		t.Errorf("missing count = %q, want ?", got)
	}

	if got := countCell(u64(1500), false); got != "1.5 k" {
		t.Errorf("count = %q, want 1.5 k", got)
	}

	if got := countCell(u64(3), true); !strings.HasPrefix(got, "~") {
		t.Errorf("approximated count %q lacks marker", got)
	}
}

func TestGauge(t *testing.T) {
	if got := gauge(nil, 100, u64(200)); strings.TrimSpace(got) != "" {
		t.Errorf("gauge for missing value = %q, want blank", got)
	}

	full := gauge(u64(100), 100, nil)
	if len([]rune(full)) != gaugeWidth {
		t.Errorf("bar width = %d runes, want %d", len([]rune(full)), gaugeWidth)
	}

	if strings.Contains(full, " ") {
		t.Errorf("peak value bar not full: %q", full)
	}

	half := gauge(u64(50), 100, nil)
	if strings.Count(half, "█") != gaugeWidth/2 {
		t.Errorf("half bar = %q, want %d filled cells", half, gaugeWidth/2)
	}

	withShare := gauge(u64(50), 100, u64(200))
	if !strings.HasSuffix(withShare, "25%") {
		t.Errorf("gauge with total = %q, want 25%% suffix", withShare)
	}
}
