package logos

import "testing"

func TestResolveKnownSymbol(t *testing.T) {
	got := Resolve("AAPL", "")
	want := "https://logo.clearbit.com/apple.com"
	if got != want {
		t.Fatalf("Resolve(AAPL) = %q, want %q", got, want)
	}
}

func TestResolveCaseAndWhitespaceInsensitive(t *testing.T) {
	if got := Resolve("  nvda ", ""); got != "https://logo.clearbit.com/nvidia.com" {
		t.Fatalf("Resolve(nvda) = %q", got)
	}
}

func TestResolveWebsiteFallback(t *testing.T) {
	cases := []struct {
		website string
		want    string
	}{
		{"https://example.org/about", "https://logo.clearbit.com/example.org"},
		{"http://www.example.org", "https://logo.clearbit.com/example.org"},
		{"example.org", "https://logo.clearbit.com/example.org"},
		{"HTTPS://WWW.Example.ORG/ir", "https://logo.clearbit.com/example.org"},
	}
	for _, tc := range cases {
		if got := Resolve("XYZ", tc.website); got != tc.want {
			t.Fatalf("Resolve(XYZ, %q) = %q, want %q", tc.website, got, tc.want)
		}
	}
}

func TestResolveOverrideBeatsWebsite(t *testing.T) {
	got := Resolve("TSLA", "https://unrelated.example.org")
	if got != "https://logo.clearbit.com/tesla.com" {
		t.Fatalf("Resolve(TSLA, website) = %q, want curated domain", got)
	}
}

func TestResolveUnknown(t *testing.T) {
	for _, tc := range []struct{ symbol, website string }{
		{"", ""},
		{"   ", "example.org"},
		{"UNLISTED", ""},
		{"UNLISTED", "   "},
		{"UNLISTED", "https://"},
	} {
		if got := Resolve(tc.symbol, tc.website); got != "" {
			t.Fatalf("Resolve(%q, %q) = %q, want empty", tc.symbol, tc.website, got)
		}
	}
}
