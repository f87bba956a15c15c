package journeymap

import (
	"testing"
	"unicode/utf8"
)

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short untouched", "Graphs", 10, "Graphs"},
		{"exact untouched", "Graphs", 6, "Graphs"},
		{"ascii truncated", "Graph theory", 8, "Graph t…"},
		{"multibyte truncated", "Théorie des graphes", 9, "Théorie …"},
		{"cjk truncated", "グラフ理論入門", 4, "グラフ…"},
		{"zero width", "Graphs", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateTitle(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncateTitle(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncateTitle(%q, %d) produced invalid UTF-8", tt.in, tt.max)
			}
		})
	}
}
