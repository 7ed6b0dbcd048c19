package domain

import "math"

// CatalogEntry is one orderable design as the core sees it, after the
// catalog adapter has reconciled whatever keys the upstream record used.
type CatalogEntry struct {
	ID            string
	Name          string
	ImageURL      string
	Colors        []string
	Sizes         []string
	ClosingStock  int
	ProductionQty int
	// Available overrides the stock arithmetic when the upstream supplied it.
	Available *int
	UnitPrice *float64
	Payload   map[string]any
}

// ComputeAvailable returns how many pieces of the entry can be ordered.
// The result is never negative.
func ComputeAvailable(e CatalogEntry) int {
	if e.Available != nil {
		return max(0, *e.Available)
	}
	return max(0, e.ClosingStock) + max(0, e.ProductionQty)
}

// StockLevel is the badge shown next to a design.
type StockLevel string

const (
	StockUnknown StockLevel = "unknown"
	StockLow     StockLevel = "low"
	StockMedium  StockLevel = "medium"
	StockHigh    StockLevel = "high"
)

// StockThresholds are the inclusive upper bounds of the low and medium bands.
type StockThresholds struct {
	LowMax    int
	MediumMax int
}

// DefaultStockThresholds: low 0-4, medium 5-24, high 25+.
var DefaultStockThresholds = StockThresholds{LowMax: 4, MediumMax: 24}

// Classify maps a quantity to a stock level. NaN is unknown; negative
// quantities count as low.
func (t StockThresholds) Classify(qty float64) StockLevel {
	switch {
	case math.IsNaN(qty):
		return StockUnknown
	case qty < float64(t.LowMax)+1:
		return StockLow
	case qty < float64(t.MediumMax)+1:
		return StockMedium
	default:
		return StockHigh
	}
}
