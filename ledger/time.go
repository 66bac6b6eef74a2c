package ledger

import "time"

// =============================================================================
// CLOCK
// =============================================================================

// Clock supplies "now". The location of the returned time defines the local
// calendar used for expiry windows and sales buckets.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is wall-clock time in the process' local zone.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// =============================================================================
// LAYOUTS
// =============================================================================

const (
	// DateLayout is the stored expiry_date format.
	DateLayout = "2006-01-02"

	// TimestampLayout is the stored created_at/sale_date format. Values are
	// always UTC. Older rows may hold "YYYY-MM-DD HH:MM:SS", so stores order
	// and range by parsed time, not by text.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts TimestampLayout, RFC 3339 and SQLite's
// CURRENT_TIMESTAMP text ("YYYY-MM-DD HH:MM:SS", UTC).
func ParseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range []string{TimestampLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// =============================================================================
// CALENDAR WINDOWS
// =============================================================================

// ExpiryWindow returns today's date and the horizon of the "expiring soon"
// window, both inclusive. The horizon is three calendar months ahead, but
// never less than 90 days.
func ExpiryWindow(now time.Time) (today, horizon string) {
	h := now.AddDate(0, 3, 0)
	if d := now.AddDate(0, 0, 90); d.After(h) {
		h = d
	}
	return now.Format(DateLayout), h.Format(DateLayout)
}

// Period is a half-open interval [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// DayOf returns the local calendar day containing t.
func DayOf(t time.Time) Period {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return Period{Start: start, End: start.AddDate(0, 0, 1)}
}

// MonthOf returns the local calendar month containing t.
func MonthOf(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

// YearOf returns the local calendar year containing t.
func YearOf(t time.Time) Period {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	return Period{Start: start, End: start.AddDate(1, 0, 0)}
}
