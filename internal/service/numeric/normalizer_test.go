package numeric

import "testing"

func TestParseSuffixes(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1.2B", 1.2e9},
		{"3K", 3e3},
		{"2.5M", 2.5e6},
		{"1.01T", 1.01e12},
		{"1.5b", 1.5e9},
		{"12,345.6", 12345.6},
		{"1,234,567", 1234567},
		{"-42.5", -42.5},
		{"+7", 7},
		{".5", 0.5},
	}
	for _, c := range cases {
		got, ok := Parse(c.in)
		if !ok {
			t.Fatalf("Parse(%q): expected ok", c.in)
		}
		if got != c.want {
			t.Fatalf("Parse(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseAbsent(t *testing.T) {
	for _, in := range []string{"--", "", "   ", "N/A", "abc", "1.2.3"} {
		if _, ok := Parse(in); ok {
			t.Fatalf("Parse(%q): expected absent", in)
		}
	}
	if _, ok := Parse(nil); ok {
		t.Fatalf("Parse(nil): expected absent")
	}
}

func TestParseNumericPassthrough(t *testing.T) {
	got, ok := Parse(42.5)
	if !ok || got != 42.5 {
		t.Fatalf("Parse(42.5) = %v, %v", got, ok)
	}
	got, ok = Parse(7)
	if !ok || got != 7 {
		t.Fatalf("Parse(7) = %v, %v", got, ok)
	}
}

func TestParsePercent(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"+3.4%", 3.4},
		{"-1.25%", -1.25},
		{"3.4", 3.4},
		{"up 2.1% today", 2.1},
		{"(+0.75%)", 0.75},
	}
	for _, c := range cases {
		got, ok := ParsePercent(c.in)
		if !ok {
			t.Fatalf("ParsePercent(%q): expected ok", c.in)
		}
		if got != c.want {
			t.Fatalf("ParsePercent(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	if _, ok := ParsePercent("--"); ok {
		t.Fatalf("ParsePercent(--): expected absent")
	}
	if _, ok := ParsePercent("no numbers here"); ok {
		t.Fatalf("ParsePercent: expected absent for text without digits")
	}
}
