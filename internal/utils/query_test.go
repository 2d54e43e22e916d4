package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		{"", 10, 10},
		{"42", 0, 42},
		{"-13", 1, -13},
		{"x", 5, 5},
		{" 42", 7, 7},
		{"999999999999999999999999", -1, -1},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ n, lo, hi, want int }{
		{0, 1, 90, 1},
		{45, 1, 90, 45},
		{365, 1, 90, 90},
	}
	for _, tc := range cases {
		if got := Clamp(tc.n, tc.lo, tc.hi); got != tc.want {
			t.Fatalf("Clamp(%d,%d,%d) = %d; want %d", tc.n, tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestPositiveOr(t *testing.T) {
	cases := []struct {
		s    string
		want int
	}{
		{"", 50},
		{"10", 10},
		{" 7 ", 7},
		{"0", 50},
		{"-3", 50},
		{"abc", 50},
	}
	for _, tc := range cases {
		if got := PositiveOr(tc.s, 50); got != tc.want {
			t.Fatalf("PositiveOr(%q) = %d; want %d", tc.s, got, tc.want)
		}
	}
}

func TestParseFlag(t *testing.T) {
	for _, v := range []string{"true", "1", "YES", " on "} {
		if !ParseFlag(v) {
			t.Fatalf("ParseFlag(%q) = false", v)
		}
	}
	for _, v := range []string{"", "false", "0", "nope"} {
		if ParseFlag(v) {
			t.Fatalf("ParseFlag(%q) = true", v)
		}
	}
}
