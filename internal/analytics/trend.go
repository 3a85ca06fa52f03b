package analytics

import (
	"strconv"
	"time"

	"github.com/clinistock/clinistock/internal/clock"
	"github.com/clinistock/clinistock/internal/shared"
)

// Bucket selects the granularity of a trend series.
type Bucket string

const (
	// BucketDay buckets by the weekdays of the reference week, Monday first.
	BucketDay Bucket = "day"
	// BucketWeek buckets by the calendar weeks of the reference month.
	BucketWeek Bucket = "week"
	// BucketMonth buckets by the twelve months of the reference year.
	BucketMonth Bucket = "month"
	// BucketYear buckets by the reference year and the four preceding.
	BucketYear Bucket = "year"
)

// ParseBucket validates a bucket query parameter.
func ParseBucket(raw string) (Bucket, error) {
	switch Bucket(raw) {
	case BucketDay, BucketWeek, BucketMonth, BucketYear:
		return Bucket(raw), nil
	}
	return "", shared.NewValidationError("bucket", "must be day, week, month or year")
}

// DateCount is a raw (usage date, entry count) pair from the snapshot.
type DateCount struct {
	Date  time.Time
	Count int64
}

// TrendPoint is one bucket of a trend series. Buckets with no usage report
// zero rather than being omitted; the series length is fixed per bucket kind.
type TrendPoint struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// TrendWindow returns the inclusive date range a bucket kind covers around
// the reference date.
func TrendWindow(bucket Bucket, ref time.Time) (time.Time, time.Time, error) {
	day := clock.DateOf(ref)
	switch bucket {
	case BucketDay:
		start := weekStart(day)
		return start, start.AddDate(0, 0, 6), nil
	case BucketWeek:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first, first.AddDate(0, 1, -1), nil
	case BucketMonth:
		return time.Date(day.Year(), 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(day.Year(), 12, 31, 0, 0, 0, 0, time.UTC), nil
	case BucketYear:
		return time.Date(day.Year()-4, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(day.Year(), 12, 31, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, time.Time{}, shared.NewValidationError("bucket", "must be day, week, month or year")
}

// BuildTrend folds raw per-date counts into the fixed-length series for the
// bucket kind. Dates outside the bucket window are ignored.
func BuildTrend(bucket Bucket, ref time.Time, counts []DateCount) ([]TrendPoint, error) {
	day := clock.DateOf(ref)
	switch bucket {
	case BucketDay:
		return buildDayTrend(day, counts), nil
	case BucketWeek:
		return buildWeekTrend(day, counts), nil
	case BucketMonth:
		return buildMonthTrend(day, counts), nil
	case BucketYear:
		return buildYearTrend(day, counts), nil
	}
	return nil, shared.NewValidationError("bucket", "must be day, week, month or year")
}

// weekStart returns the Monday of the week containing d.
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func buildDayTrend(ref time.Time, counts []DateCount) []TrendPoint {
	start := weekStart(ref)
	points := make([]TrendPoint, 7)
	for i := range points {
		points[i].Label = start.AddDate(0, 0, i).Format("Mon")
	}
	for _, c := range counts {
		d := clock.DateOf(c.Date)
		idx := int(d.Sub(start).Hours() / 24)
		if idx >= 0 && idx < 7 {
			points[idx].Count += c.Count
		}
	}
	return points
}

// buildWeekTrend buckets by the calendar weeks overlapping the reference
// month, between four points (a 28-day February starting on Monday) and six
// (a 30- or 31-day month whose first day falls late in the week). Days of a
// week that belong to an adjacent month are clipped: only usage dated inside
// the month counts.
func buildWeekTrend(ref time.Time, counts []DateCount) []TrendPoint {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	gridStart := weekStart(first)
	weeks := int(last.Sub(gridStart).Hours()/24)/7 + 1

	points := make([]TrendPoint, weeks)
	for i := range points {
		points[i].Label = "Week " + strconv.Itoa(i+1)
	}
	for _, c := range counts {
		d := clock.DateOf(c.Date)
		if d.Before(first) || d.After(last) {
			continue
		}
		idx := int(d.Sub(gridStart).Hours()/24) / 7
		if idx >= 0 && idx < weeks {
			points[idx].Count += c.Count
		}
	}
	return points
}

func buildMonthTrend(ref time.Time, counts []DateCount) []TrendPoint {
	points := make([]TrendPoint, 12)
	for i := range points {
		points[i].Label = time.Month(i + 1).String()[:3]
	}
	for _, c := range counts {
		d := clock.DateOf(c.Date)
		if d.Year() != ref.Year() {
			continue
		}
		points[int(d.Month())-1].Count += c.Count
	}
	return points
}

func buildYearTrend(ref time.Time, counts []DateCount) []TrendPoint {
	startYear := ref.Year() - 4
	points := make([]TrendPoint, 5)
	for i := range points {
		points[i].Label = strconv.Itoa(startYear + i)
	}
	for _, c := range counts {
		d := clock.DateOf(c.Date)
		idx := d.Year() - startYear
		if idx >= 0 && idx < 5 {
			points[idx].Count += c.Count
		}
	}
	return points
}
