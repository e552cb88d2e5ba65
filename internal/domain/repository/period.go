package repository

// DefaultPeriod is used when a request does not name one.
const DefaultPeriod = "6mo"

var knownPeriods = map[string]struct{}{
	"1d": {}, "5d": {}, "1mo": {}, "3mo": {}, "6mo": {},
	"1y": {}, "2y": {}, "5y": {}, "10y": {}, "ytd": {}, "max": {},
}

// NormalizePeriod maps a requested history period onto a supported one,
// falling back to the default for unknown or empty input.
func NormalizePeriod(p string) string {
	if _, ok := knownPeriods[p]; ok {
		return p
	}
	return DefaultPeriod
}

// ValidPeriod reports whether p is a supported history period.
func ValidPeriod(p string) bool {
	_, ok := knownPeriods[p]
	return ok
}
