package catalog

import "time"

// Kind partitions the catalog into the three consumable families the clinic
// stocks.
type Kind string

const (
	// KindVaccine marks immunisation stock.
	KindVaccine Kind = "VACCINE"
	// KindMedication marks dispensed medications.
	KindMedication Kind = "MEDICATION"
	// KindSupply marks general medical supplies.
	KindSupply Kind = "SUPPLY"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindVaccine, KindMedication, KindSupply:
		return true
	}
	return false
}

// Item is a catalog entry referenced by every batch. Items are read-mostly
// reference data; stock levels are derived from batches, never stored here.
type Item struct {
	ID           int64
	Code         string
	Name         string
	Kind         Kind
	Category     string
	Unit         string
	MinimumStock int64
	UnitCost     float64
	Manufacturer string
	DosageForm   string
	StorageTemp  string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListFilters narrows item listings.
type ListFilters struct {
	Kind     Kind
	Category string
	Search   string
	IsActive *bool
	Page     int
	Limit    int
}
