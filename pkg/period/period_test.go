package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddOneMonth_Clamps(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{name: "jan 31 to feb 29 in leap year", in: date(2024, 1, 31), want: date(2024, 2, 29)},
		{name: "jan 31 to feb 28", in: date(2023, 1, 31), want: date(2023, 2, 28)},
		{name: "mar 31 to apr 30", in: date(2024, 3, 31), want: date(2024, 4, 30)},
		{name: "mid month", in: date(2024, 5, 15), want: date(2024, 6, 15)},
		{name: "december rolls year", in: date(2024, 12, 31), want: date(2025, 1, 31)},
		{name: "time of day dropped", in: time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC), want: date(2024, 2, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, AddOneMonth(tt.in))
		})
	}
}

func TestAddMonths_NegativeAndLarge(t *testing.T) {
	require.Equal(t, date(2023, 11, 30), AddMonths(date(2024, 1, 30), -2))
	require.Equal(t, date(2026, 2, 28), AddMonths(date(2024, 1, 31), 25))
	require.Equal(t, date(2024, 1, 31), AddMonths(date(2024, 1, 31), 0))
}

func TestCurrentAndKeyHelpers(t *testing.T) {
	k := Current(time.Date(2024, 2, 29, 15, 0, 0, 0, time.UTC))
	require.Equal(t, Key{Year: 2024, Month: time.February}, k)
	require.Equal(t, "2024-02", k.String())
	require.Equal(t, date(2024, 2, 1), k.Start())
	require.Equal(t, date(2024, 2, 29), k.End())
	require.Equal(t, Key{Year: 2024, Month: time.March}, k.Next())
	require.Equal(t, Key{Year: 2025, Month: time.January}, Key{Year: 2024, Month: time.December}.Next())
	require.True(t, k.Before(k.Next()))
	require.False(t, k.Next().Before(k))

	parsed, err := ParseKey("2024-02")
	require.NoError(t, err)
	require.Equal(t, k, parsed)

	_, err = ParseKey("2024/02")
	require.Error(t, err)
}

func TestMonthsBetween(t *testing.T) {
	require.Equal(t, 0, MonthsBetween(Key{2024, time.March}, Key{2024, time.March}))
	require.Equal(t, 13, MonthsBetween(Key{2023, time.February}, Key{2024, time.March}))
	require.Equal(t, -1, MonthsBetween(Key{2024, time.March}, Key{2024, time.February}))
}

func TestDueDate_AnchoredOnCreationDay(t *testing.T) {
	created := date(2024, 1, 31)
	require.Equal(t, date(2024, 2, 29), DueDate(created, Key{2024, time.January}))
	require.Equal(t, date(2024, 3, 31), DueDate(created, Key{2024, time.February}))
	require.Equal(t, date(2024, 4, 30), DueDate(created, Key{2024, time.March}))
	require.Equal(t, date(2024, 5, 31), DueDate(created, Key{2024, time.April}))
}
