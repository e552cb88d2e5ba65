package markethours

import (
	"fmt"
	"time"
)

// Config describes a single exchange trading session. Zero-value fields fall
// back to US equity hours in America/New_York.
type Config struct {
	Timezone  string `yaml:"timezone" default:"America/New_York"`
	OpenHour  int    `yaml:"open_hour" default:"9"`
	OpenMin   int    `yaml:"open_min" default:"30"`
	CloseHour int    `yaml:"close_hour" default:"16"`
	CloseMin  int    `yaml:"close_min" default:"0"`
	// Disabled turns the whole check off: the market is treated as always
	// open and scheduled refreshes never pause.
	Disabled bool `yaml:"disabled"`
}

// Clock reports whether the configured market session is open at a given
// instant. Weekends are always closed; exchange holidays are not modeled, so
// a holiday weekday counts as open.
type Clock struct {
	loc       *time.Location
	openMins  int
	closeMins int
	enabled   bool
}

// New builds a Clock from cfg. Fails when the timezone is unknown.
func New(cfg *Config) (*Clock, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load market timezone %q: %w", cfg.Timezone, err)
	}
	return &Clock{
		loc:       loc,
		openMins:  cfg.OpenHour*60 + cfg.OpenMin,
		closeMins: cfg.CloseHour*60 + cfg.CloseMin,
		enabled:   !cfg.Disabled,
	}, nil
}

// AlwaysOpen returns a Clock whose IsOpen is constantly true.
func AlwaysOpen() *Clock {
	return &Clock{enabled: false}
}

// IsOpen reports whether t falls inside the trading session. The open minute
// is inclusive, the close minute exclusive.
func (c *Clock) IsOpen(t time.Time) bool {
	if !c.enabled {
		return true
	}
	local := t.In(c.loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	mins := local.Hour()*60 + local.Minute()
	return mins >= c.openMins && mins < c.closeMins
}
