package domain

import (
	"fmt"
	"strings"
)

// NoticeKind tells the caller what, if anything, to show the buyer after a
// quantity operation.
type NoticeKind string

const (
	NoticeNone NoticeKind = ""
	// NoticeAtCeiling: an increment was ignored because the item is at its
	// maximum. Not shown; the control is expected to be disabled.
	NoticeAtCeiling NoticeKind = "at_ceiling"
	// NoticeClamped: the request was reduced to the largest feasible value.
	NoticeClamped NoticeKind = "clamped"
	// NoticeNoStock: nothing can be ordered, the request was refused.
	NoticeNoStock NoticeKind = "no_stock"
)

// Outcome describes the effect of one quantity operation on a line item.
type Outcome struct {
	Changed   bool       `json:"changed"`
	Notice    NoticeKind `json:"notice,omitempty"`
	Message   string     `json:"message,omitempty"`
	Available int        `json:"available"`
}

// Blocking reports whether the buyer must be told about the outcome.
func (o Outcome) Blocking() bool {
	return o.Notice == NoticeClamped || o.Notice == NoticeNoStock
}

// Increment adds one to the item's quantity, or to every size at once.
// An increment that would pass the available pieces is ignored.
func Increment(li *LineItem, e CatalogEntry) Outcome {
	avail := ComputeAvailable(e)
	if avail == 0 {
		return noStock(li, avail)
	}
	perColor := min(avail/li.ColorsCount(), MaxQuantity)

	if !li.HasSizes() {
		li.SetsCount = capQuantity(li.SetsCount)
		if li.SetsCount+1 > perColor {
			return Outcome{Notice: NoticeAtCeiling, Available: avail}
		}
		li.SetsCount++
		return Outcome{Changed: true, Available: avail}
	}

	li.normalizeSizes()
	if li.Quantity()+len(li.Sizes) > perColor {
		return Outcome{Notice: NoticeAtCeiling, Available: avail}
	}
	for _, s := range li.Sizes {
		li.PerSizeCount[s]++
	}
	return Outcome{Changed: true, Available: avail}
}

// Decrement removes one from the quantity, or from every size, never
// going below zero.
func Decrement(li *LineItem, e CatalogEntry) Outcome {
	out := Outcome{Available: ComputeAvailable(e)}

	if !li.HasSizes() {
		if li.SetsCount > 0 {
			li.SetsCount = capQuantity(li.SetsCount) - 1
			out.Changed = true
		} else {
			li.SetsCount = 0
		}
		return out
	}

	li.normalizeSizes()
	for _, s := range li.Sizes {
		if li.PerSizeCount[s] > 0 {
			li.PerSizeCount[s]--
			out.Changed = true
		}
	}
	return out
}

// SetSets applies a typed-in quantity. For items with sizes every size gets
// the value. Values over the available pieces are clamped.
func SetSets(li *LineItem, e CatalogEntry, raw string) Outcome {
	return setQuantity(li, e, ParseQuantity(raw), true)
}

// SetSizeCount applies a typed-in quantity to a single size. The maximum
// for the size is what the other sizes leave of the available pieces.
func SetSizeCount(li *LineItem, e CatalogEntry, size, raw string) (Outcome, error) {
	label, ok := li.hasSize(size)
	if !ok {
		return Outcome{}, NewUnknownSizeError(li.EntryID, size)
	}
	li.normalizeSizes()

	avail := ComputeAvailable(e)
	colors := li.ColorsCount()
	n := ParseQuantity(raw)
	others := li.Quantity() - li.PerSizeCount[label]
	before := li.PerSizeCount[label]

	out := Outcome{Available: avail}
	if n > avail/colors-others {
		if avail == 0 {
			return noStock(li, avail), nil
		}
		n = max(0, avail/colors-others)
		out.Notice = NoticeClamped
		out.Message = clampMessage(avail, n)
	}

	li.PerSizeCount[label] = n
	out.Changed = n != before
	return out, nil
}

// ToggleColor selects or deselects a color, then fits the quantities to
// the new number of colors.
func ToggleColor(li *LineItem, e CatalogEntry, color string) (Outcome, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return Outcome{}, ErrColorRequired
	}
	if len(e.Colors) > 0 {
		idx := indexOfColor(e.Colors, color)
		if idx < 0 {
			return Outcome{}, NewUnknownColorError(e.ID, color)
		}
		color = e.Colors[idx]
	}

	if i := indexOfColor(li.SelectedColors, color); i >= 0 {
		li.SelectedColors = append(li.SelectedColors[:i:i], li.SelectedColors[i+1:]...)
	} else {
		li.SelectedColors = append(li.SelectedColors, color)
	}

	out := Fit(li, e)
	out.Changed = true
	return out, nil
}

// Fit brings an item that asks for more pieces than are available back
// within the limit: the per-color quantity becomes available/colors, and
// for items with sizes that is further split evenly across the sizes.
func Fit(li *LineItem, e CatalogEntry) Outcome {
	avail := ComputeAvailable(e)
	if !li.HasSizes() {
		li.SetsCount = capQuantity(li.SetsCount)
	} else {
		li.normalizeSizes()
	}
	if li.Quantity() <= avail/li.ColorsCount() {
		return Outcome{Available: avail}
	}

	perColor := avail / li.ColorsCount()
	if li.HasSizes() {
		per := perColor / len(li.Sizes)
		for _, s := range li.Sizes {
			li.PerSizeCount[s] = per
		}
	} else {
		li.SetsCount = perColor
	}

	if avail == 0 {
		out := noStock(li, avail)
		out.Changed = true
		return out
	}
	return Outcome{
		Changed:   true,
		Notice:    NoticeClamped,
		Message:   clampMessage(avail, li.Quantity()),
		Available: avail,
	}
}

// SelectAllColors selects every color of each item's entry, or clears the
// selection of every item. Quantities are left as they are.
func SelectAllColors(items []*LineItem, entries map[string]CatalogEntry, enable bool) {
	for _, li := range items {
		if !enable {
			li.SelectedColors = []string{}
			continue
		}
		if e, ok := entries[li.EntryID]; ok {
			li.SelectedColors = DedupeColors(e.Colors)
		}
	}
}

// ItemOutcome pairs an outcome with the item it belongs to.
type ItemOutcome struct {
	EntryID string  `json:"id"`
	Outcome Outcome `json:"outcome"`
}

// ApplyToAll sets every item's quantity to n, clamping each item on its own.
// Items whose entry is no longer in the catalog are left untouched.
func ApplyToAll(items []*LineItem, entries map[string]CatalogEntry, n int) []ItemOutcome {
	n = capQuantity(n)
	outcomes := make([]ItemOutcome, 0, len(items))
	for _, li := range items {
		e, ok := entries[li.EntryID]
		if !ok {
			outcomes = append(outcomes, ItemOutcome{EntryID: li.EntryID})
			continue
		}
		outcomes = append(outcomes, ItemOutcome{
			EntryID: li.EntryID,
			Outcome: setQuantity(li, e, n, false),
		})
	}
	return outcomes
}

// setQuantity sets the per-color quantity (per size for sized items).
// With rejectEmpty an entry without stock refuses any positive value;
// otherwise it clamps to zero like any other shortfall.
func setQuantity(li *LineItem, e CatalogEntry, n int, rejectEmpty bool) Outcome {
	n = capQuantity(n)
	avail := ComputeAvailable(e)
	colors := li.ColorsCount()
	before := li.Quantity()
	out := Outcome{Available: avail}

	slots := 1
	if li.HasSizes() {
		li.normalizeSizes()
		slots = len(li.Sizes)
	}

	if n > avail/(slots*colors) {
		if avail == 0 && rejectEmpty {
			return noStock(li, avail)
		}
		n = avail / colors / slots
		out.Notice = NoticeClamped
		out.Message = clampMessage(avail, n)
		if avail == 0 {
			out.Notice = NoticeNoStock
			out.Message = noStockMessage(li)
		}
	}

	if li.HasSizes() {
		for _, s := range li.Sizes {
			if li.PerSizeCount[s] != n {
				out.Changed = true
			}
			li.PerSizeCount[s] = n
		}
	} else {
		li.SetsCount = n
		out.Changed = n != before
	}
	return out
}

func noStock(li *LineItem, avail int) Outcome {
	return Outcome{
		Notice:    NoticeNoStock,
		Message:   noStockMessage(li),
		Available: avail,
	}
}

func noStockMessage(li *LineItem) string {
	name := li.Name
	if name == "" {
		name = li.EntryID
	}
	return fmt.Sprintf("%s is out of stock", name)
}

func clampMessage(avail, qty int) string {
	return fmt.Sprintf("only %d pieces available, quantity set to %d", avail, qty)
}
