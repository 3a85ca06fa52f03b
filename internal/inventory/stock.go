package inventory

// Level classifies stock health from the ratio of current stock to the
// item's minimum threshold.
type Level string

const (
	// LevelCritical means stock at or below a quarter of the minimum, or zero.
	LevelCritical Level = "CRITICAL"
	// LevelLow means stock above a quarter and at most half of the minimum.
	LevelLow Level = "LOW"
	// LevelMedium means stock above half of but below the minimum.
	LevelMedium Level = "MEDIUM"
	// LevelGood means stock at or above the minimum.
	LevelGood Level = "GOOD"
)

// ClassifyStock maps (currentStock, minimumStock) to a Level. The minimum is
// clamped to 1 so a zero threshold cannot divide by zero; zero stock is
// always CRITICAL. A ratio of exactly 0.5 classifies as LOW.
func ClassifyStock(currentStock, minimumStock int64) Level {
	if currentStock <= 0 {
		return LevelCritical
	}
	min := minimumStock
	if min < 1 {
		min = 1
	}
	ratio := float64(currentStock) / float64(min)
	switch {
	case ratio <= 0.25:
		return LevelCritical
	case ratio <= 0.5:
		return LevelLow
	case ratio < 1.0:
		return LevelMedium
	default:
		return LevelGood
	}
}
