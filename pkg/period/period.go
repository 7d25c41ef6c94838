// Package period computes billing periods and month arithmetic at date-only
// granularity. All values are normalized to UTC midnight.
package period

import (
	"fmt"
	"time"
)

// Key identifies one billing period.
type Key struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Current returns the billing period containing now.
func Current(now time.Time) Key {
	d := DateOnly(now)
	return Key{Year: d.Year(), Month: d.Month()}
}

// ParseKey parses the "YYYY-MM" form produced by Key.String.
func ParseKey(s string) (Key, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Key{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	return Key{Year: t.Year(), Month: t.Month()}, nil
}

func (k Key) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Start is the first day of the period.
func (k Key) Start() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last day of the period.
func (k Key) End() time.Time {
	return time.Date(k.Year, k.Month+1, 0, 0, 0, 0, 0, time.UTC)
}

func (k Key) Next() Key {
	return Current(k.Start().AddDate(0, 1, 0))
}

func (k Key) Before(other Key) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// MonthsBetween returns the number of whole periods from a to b (negative if b is earlier).
func MonthsBetween(a, b Key) int {
	return (b.Year-a.Year)*12 + int(b.Month) - int(a.Month)
}

// DateOnly truncates t to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths adds n months to date, clamping the day to the last valid day of
// the resulting month. time.AddDate would roll Jan 31 + 1 month into March.
func AddMonths(date time.Time, n int) time.Time {
	d := DateOnly(date)
	total := int(d.Month()) - 1 + n
	year := d.Year() + total/12
	m := total % 12
	if m < 0 {
		m += 12
		year--
	}
	month := time.Month(m + 1)
	day := d.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddOneMonth is AddMonths(date, 1).
func AddOneMonth(date time.Time) time.Time {
	return AddMonths(date, 1)
}

// DueDate projects the anchor (one month after createdAt) forward into period k.
// Each period is computed from createdAt directly so clamped months do not drift
// the anchor day.
func DueDate(createdAt time.Time, k Key) time.Time {
	return AddMonths(createdAt, MonthsBetween(Current(createdAt), k)+1)
}
