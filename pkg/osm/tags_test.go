package osm

import "testing"

func TestParseLanes(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"", 0},
		{"2", 2},
		{"2;3", 3},
		{"3;2", 3},
		{" 2 ; 4 ", 4},
		{"abc", 0},
		{"2;x", 2},
		{"-1", 0},
		{"0", 0},
		{"1.5", 0},
	}

	for _, tt := range tests {
		if got := parseLanes(tt.value); got != tt.want {
			t.Errorf("parseLanes(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestParseOneway(t *testing.T) {
	tests := []struct {
		value string
		want  wayDirection
	}{
		{"yes", directionForward},
		{"true", directionForward},
		{"1", directionForward},
		{"-1", directionReverse},
		{"", directionBoth},
		{"no", directionBoth},
		{"0", directionBoth},
		{"reversible", directionBoth},
	}

	for _, tt := range tests {
		if got := parseOneway(tt.value); got != tt.want {
			t.Errorf("parseOneway(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
