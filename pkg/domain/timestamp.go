package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	dErrors "kycore/pkg/domain-errors"
)

// Timezone is a named IANA location.
type Timezone struct {
	loc *time.Location
}

// UTC is the default timezone.
func UTC() Timezone {
	return Timezone{loc: time.UTC}
}

// ParseTimezone loads an IANA zone such as "Europe/Berlin".
func ParseTimezone(name string) (Timezone, error) {
	if name == "" {
		return Timezone{}, dErrors.New(dErrors.CodeArgumentInvalid, "timezone is required")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Timezone{}, dErrors.Wrap(err, dErrors.CodeArgumentInvalid, "unknown timezone")
	}
	return Timezone{loc: loc}, nil
}

// Location returns the zone, defaulting to UTC for the zero value.
func (tz Timezone) Location() *time.Location {
	if tz.loc == nil {
		return time.UTC
	}
	return tz.loc
}

func (tz Timezone) String() string {
	return tz.Location().String()
}

func (tz Timezone) Equal(other Timezone) bool {
	return tz.String() == other.String()
}

// Timestamp is an instant with microsecond precision, matching what relational
// stores persist so that a saved and reloaded timestamp compares equal.
type Timestamp struct {
	t time.Time
}

// Now returns the current instant.
func Now() Timestamp {
	return Timestamp{t: time.Now().UTC().Truncate(time.Microsecond)}
}

// NewTimestamp wraps t. Errors: CodeArgumentInvalid for the zero time.
func NewTimestamp(t time.Time) (Timestamp, error) {
	if t.IsZero() {
		return Timestamp{}, dErrors.New(dErrors.CodeArgumentInvalid, "timestamp is required")
	}
	return Timestamp{t: t.Truncate(time.Microsecond)}, nil
}

// ParseTimestamp reads an RFC 3339 instant.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Timestamp{}, dErrors.Wrap(err, dErrors.CodeArgumentInvalid, "invalid timestamp")
	}
	return NewTimestamp(t)
}

// FromUnix converts seconds since the epoch.
func FromUnix(sec int64) Timestamp {
	return Timestamp{t: time.Unix(sec, 0).UTC()}
}

func (ts Timestamp) Time() time.Time { return ts.t }
func (ts Timestamp) Unix() int64     { return ts.t.Unix() }
func (ts Timestamp) IsZero() bool    { return ts.t.IsZero() }

// In returns the same instant viewed in tz.
func (ts Timestamp) In(tz Timezone) Timestamp {
	return Timestamp{t: ts.t.In(tz.Location())}
}

func (ts Timestamp) Add(d time.Duration) Timestamp {
	return Timestamp{t: ts.t.Add(d).Truncate(time.Microsecond)}
}

func (ts Timestamp) AddDate(years, months, days int) Timestamp {
	return Timestamp{t: ts.t.AddDate(years, months, days)}
}

// Diff returns ts minus other.
func (ts Timestamp) Diff(other Timestamp) time.Duration {
	return ts.t.Sub(other.t)
}

func (ts Timestamp) Before(other Timestamp) bool { return ts.t.Before(other.t) }
func (ts Timestamp) After(other Timestamp) bool  { return ts.t.After(other.t) }

// Equal compares instants regardless of zone.
func (ts Timestamp) Equal(other Timestamp) bool { return ts.t.Equal(other.t) }

func (ts Timestamp) IsInPast() bool   { return ts.t.Before(time.Now()) }
func (ts Timestamp) IsInFuture() bool { return ts.t.After(time.Now()) }

// StartOfDay returns midnight of the calendar day of ts in tz.
func (ts Timestamp) StartOfDay(tz Timezone) Timestamp {
	local := ts.t.In(tz.Location())
	y, m, d := local.Date()
	return Timestamp{t: time.Date(y, m, d, 0, 0, 0, 0, tz.Location())}
}

// EndOfDay returns the last microsecond of the calendar day of ts in tz.
func (ts Timestamp) EndOfDay(tz Timezone) Timestamp {
	return Timestamp{t: ts.StartOfDay(tz).t.AddDate(0, 0, 1).Add(-time.Microsecond)}
}

func (ts Timestamp) String() string {
	return ts.t.UTC().Format(time.RFC3339Nano)
}

func (ts Timestamp) Value() (driver.Value, error) {
	if ts.t.IsZero() {
		return nil, nil
	}
	return ts.t.UTC(), nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}
