package inventory

import "time"

// Batch is one received lot of stock for a catalog item. Batches are never
// merged: every receipt creates a new row, and only usage debits or disposal
// ever touch it afterwards. Expiry date, cost and identity are immutable.
type Batch struct {
	ID           int64
	ItemID       int64
	BatchNumber  string
	LotNumber    string
	QtyReceived  int64
	QtyRemaining int64
	ExpiryDate   time.Time
	ReceivedAt   time.Time
	UnitCost     float64
	Supplier     string
	CreatedAt    time.Time
}

// Exhausted reports whether the batch has no remaining stock. Exhausted
// batches stay in the ledger until disposed.
func (b Batch) Exhausted() bool { return b.QtyRemaining <= 0 }

// DisposalRecord is the audit snapshot left behind when a batch is removed.
// The source batch row is deleted; the record persists independently.
type DisposalRecord struct {
	ID           int64
	Code         string
	BatchID      int64
	ItemID       int64
	BatchNumber  string
	LotNumber    string
	QtyRemaining int64
	ExpiryDate   time.Time
	UnitCost     float64
	Supplier     string
	Reason       string
	DisposedAt   time.Time
	DisposedBy   int64
}

// DisposalReasonExpired is the only reason this engine produces.
const DisposalReasonExpired = "expired"

// AddBatchInput describes an add-stock request.
type AddBatchInput struct {
	ItemID      int64
	QtyReceived int64
	ExpiryDate  time.Time
	BatchNumber string
	LotNumber   string
	UnitCost    float64
	Supplier    string
	Ref         string
	ActorID     int64
}

// DebitRequest asks for quantity to be drained from an item's batches.
// BatchID pins the debit to one named batch; when nil the ledger picks
// batches earliest-expiry-first.
type DebitRequest struct {
	ItemID   int64
	Quantity int64
	BatchID  *int64
}

// Allocation records how much one debit took from one batch.
type Allocation struct {
	BatchID  int64 `json:"batch_id"`
	Quantity int64 `json:"quantity"`
}

// StockStatus pairs an item's derived aggregate stock with its health level.
type StockStatus struct {
	ItemID       int64
	Aggregate    int64
	MinimumStock int64
	Level        Level
}
