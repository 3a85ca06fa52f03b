package usage

import (
	"time"

	"github.com/clinistock/clinistock/internal/inventory"
)

// Entry is one recorded consumption event. Entries are immutable: there is
// no update or delete, corrections are compensating future entries.
type Entry struct {
	ID         int64
	Code       string
	UsageDate  time.Time
	Notes      string
	RecordedAt time.Time
	RecordedBy int64
	Lines      []Line
}

// Line debits one item within an entry. Allocations record which batches the
// ledger actually drained.
type Line struct {
	ID          int64
	ItemID      int64
	Quantity    int64
	BatchID     *int64
	Allocations []inventory.Allocation
}

// LogInput describes a log-usage request.
type LogInput struct {
	Date    time.Time
	Lines   []LineInput
	Notes   string
	ActorID int64
}

// LineInput is one requested debit line.
type LineInput struct {
	ItemID   int64
	Quantity int64
	BatchID  *int64
}

// ListFilter narrows entry listings to a window and optionally one item.
type ListFilter struct {
	From   time.Time
	To     time.Time
	ItemID int64
	Limit  int
}
