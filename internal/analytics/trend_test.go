package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseBucket(t *testing.T) {
	for _, raw := range []string{"day", "week", "month", "year"} {
		b, err := ParseBucket(raw)
		require.NoError(t, err)
		require.Equal(t, Bucket(raw), b)
	}
	_, err := ParseBucket("decade")
	require.Error(t, err)
}

func TestWeekStart(t *testing.T) {
	// 2026-08-31 is a Monday.
	monday := date(2026, time.August, 31)
	require.Equal(t, monday, weekStart(monday))
	require.Equal(t, monday, weekStart(date(2026, time.September, 3)))
	require.Equal(t, monday, weekStart(date(2026, time.September, 6)))
}

func TestBuildDayTrend(t *testing.T) {
	ref := date(2026, time.September, 3) // Thursday
	points, err := BuildTrend(BucketDay, ref, []DateCount{
		{Date: date(2026, time.August, 31), Count: 2}, // Mon
		{Date: date(2026, time.September, 3), Count: 5},
		{Date: date(2026, time.September, 6), Count: 1}, // Sun
		{Date: date(2026, time.August, 30), Count: 9},   // previous week, ignored
	})
	require.NoError(t, err)
	require.Len(t, points, 7)
	require.Equal(t, "Mon", points[0].Label)
	require.Equal(t, int64(2), points[0].Count)
	require.Equal(t, int64(5), points[3].Count)
	require.Equal(t, int64(0), points[4].Count)
	require.Equal(t, "Sun", points[6].Label)
	require.Equal(t, int64(1), points[6].Count)
}

func TestBuildWeekTrendClipsAdjacentMonths(t *testing.T) {
	// September 2026 starts on a Tuesday; its first calendar week also
	// contains Aug 31, which must not count.
	ref := date(2026, time.September, 15)
	points, err := BuildTrend(BucketWeek, ref, []DateCount{
		{Date: date(2026, time.August, 31), Count: 7},
		{Date: date(2026, time.September, 1), Count: 3},
		{Date: date(2026, time.September, 7), Count: 2},
		{Date: date(2026, time.September, 30), Count: 4},
	})
	require.NoError(t, err)
	require.Len(t, points, 5)
	require.Equal(t, "Week 1", points[0].Label)
	require.Equal(t, int64(3), points[0].Count)
	require.Equal(t, int64(2), points[1].Count)
	require.Equal(t, int64(4), points[4].Count)
}

func TestBuildWeekTrendSixWeekMonth(t *testing.T) {
	// August 2026 starts on a Saturday and ends on a Monday, so it spans
	// six Monday-start calendar weeks.
	ref := date(2026, time.August, 15)
	points, err := BuildTrend(BucketWeek, ref, []DateCount{
		{Date: date(2026, time.August, 1), Count: 2},
		{Date: date(2026, time.August, 31), Count: 9},
	})
	require.NoError(t, err)
	require.Len(t, points, 6)
	require.Equal(t, int64(2), points[0].Count)
	require.Equal(t, int64(9), points[5].Count)
}

func TestBuildMonthTrend(t *testing.T) {
	ref := date(2026, time.June, 10)
	points, err := BuildTrend(BucketMonth, ref, []DateCount{
		{Date: date(2026, time.January, 5), Count: 1},
		{Date: date(2026, time.January, 20), Count: 2},
		{Date: date(2026, time.December, 31), Count: 6},
		{Date: date(2025, time.June, 1), Count: 8}, // wrong year
	})
	require.NoError(t, err)
	require.Len(t, points, 12)
	require.Equal(t, "Jan", points[0].Label)
	require.Equal(t, int64(3), points[0].Count)
	require.Equal(t, int64(0), points[5].Count)
	require.Equal(t, "Dec", points[11].Label)
	require.Equal(t, int64(6), points[11].Count)
}

func TestBuildYearTrend(t *testing.T) {
	ref := date(2026, time.March, 1)
	points, err := BuildTrend(BucketYear, ref, []DateCount{
		{Date: date(2022, time.July, 1), Count: 4},
		{Date: date(2026, time.January, 1), Count: 9},
		{Date: date(2020, time.January, 1), Count: 5}, // outside window
	})
	require.NoError(t, err)
	require.Len(t, points, 5)
	require.Equal(t, "2022", points[0].Label)
	require.Equal(t, int64(4), points[0].Count)
	require.Equal(t, "2026", points[4].Label)
	require.Equal(t, int64(9), points[4].Count)
}

func TestTrendWindow(t *testing.T) {
	ref := date(2026, time.September, 3)
	from, to, err := TrendWindow(BucketDay, ref)
	require.NoError(t, err)
	require.Equal(t, date(2026, time.August, 31), from)
	require.Equal(t, date(2026, time.September, 6), to)

	from, to, err = TrendWindow(BucketWeek, ref)
	require.NoError(t, err)
	require.Equal(t, date(2026, time.September, 1), from)
	require.Equal(t, date(2026, time.September, 30), to)

	from, to, err = TrendWindow(BucketYear, ref)
	require.NoError(t, err)
	require.Equal(t, date(2022, time.January, 1), from)
	require.Equal(t, date(2026, time.December, 31), to)
}
