package inventory

import (
	"time"

	"github.com/clinistock/clinistock/internal/clock"
)

// Risk classifies how close a batch is to its expiry date.
type Risk string

const (
	// RiskExpired means the expiry date is strictly before today.
	RiskExpired Risk = "EXPIRED"
	// RiskCritical means expiry falls within the next seven days.
	RiskCritical Risk = "CRITICAL_7D"
	// RiskWarning means expiry falls after seven and within thirty days.
	RiskWarning Risk = "WARNING_30D"
	// RiskOK means expiry is more than thirty days away.
	RiskOK Risk = "OK"
)

// Expiry risk windows in days.
const (
	CriticalWindowDays = 7
	WarningWindowDays  = 30
)

// ClassifyExpiry maps an expiry date against "now" to a Risk. The comparison
// is date-only in UTC; time of day never matters.
func ClassifyExpiry(expiryDate, now time.Time) Risk {
	expiry := clock.DateOf(expiryDate)
	today := clock.DateOf(now)
	switch {
	case expiry.Before(today):
		return RiskExpired
	case !expiry.After(today.AddDate(0, 0, CriticalWindowDays)):
		return RiskCritical
	case !expiry.After(today.AddDate(0, 0, WarningWindowDays)):
		return RiskWarning
	default:
		return RiskOK
	}
}

// DaysUntilExpiry returns whole days between today and the expiry date.
// Negative values mean the batch already expired.
func DaysUntilExpiry(expiryDate, now time.Time) int {
	expiry := clock.DateOf(expiryDate)
	today := clock.DateOf(now)
	return int(expiry.Sub(today).Hours() / 24)
}
