// Package logos derives company logo URLs for dashboard symbols. It never
// performs network requests: it only builds URLs the frontend can consume,
// preferring a curated symbol-to-domain table and falling back to a domain
// extracted from the company's website.
package logos

import (
	"net/url"
	"strings"
)

const clearbitBase = "https://logo.clearbit.com/"

// symbolDomains maps the symbols we track most often onto their official
// company domains.
var symbolDomains = map[string]string{
	"AAPL":  "apple.com",
	"TSLA":  "tesla.com",
	"MSFT":  "microsoft.com",
	"GOOG":  "google.com",
	"GOOGL": "google.com",
	"AMZN":  "amazon.com",
	"SPOT":  "spotify.com",
	"DIS":   "disney.com",
	"NVDA":  "nvidia.com",
	"META":  "meta.com",
	"JPM":   "jpmorganchase.com",
	"NFLX":  "netflix.com",
	"BRK.B": "berkshirehathaway.com",
	"BAC":   "bankofamerica.com",
	"V":     "visa.com",
	"MA":    "mastercard.com",
	"KO":    "coca-colacompany.com",
	"PEP":   "pepsico.com",
	"XOM":   "exxonmobil.com",
	"CVX":   "chevron.com",
}

// Resolve returns a logo URL for symbol, or "" when no reliable source can
// be determined. The curated domain table wins; otherwise the domain is
// derived from website (the company's official site, scheme optional).
func Resolve(symbol, website string) string {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return ""
	}

	domain := symbolDomains[sym]
	if domain == "" {
		domain = normalizeDomain(website)
	}
	if domain == "" {
		return ""
	}
	return clearbitBase + domain
}

// normalizeDomain extracts a lower-cased hostname from a generic URL,
// stripping a leading "www.".
func normalizeDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if host == "" {
		return ""
	}
	host = strings.TrimPrefix(host, "www.")
	return strings.ToLower(host)
}
