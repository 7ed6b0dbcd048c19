package domain

import (
	"errors"
	"strconv"
	"strings"
)

// MaxQuantity bounds every stored per-color quantity, per size for sized
// items, so piece arithmetic cannot overflow.
const MaxQuantity = 1_000_000

func capQuantity(n int) int {
	return min(max(0, n), MaxQuantity)
}

// LineItem is one catalog entry in a cart together with the buyer's
// color, size and quantity choices.
//
// SetsCount is the quantity of a sizeless entry. For entries with sizes
// PerSizeCount supersedes it. Every quantity is per selected color.
type LineItem struct {
	EntryID        string         `json:"id"`
	Name           string         `json:"name,omitempty"`
	ImageURL       string         `json:"image_url,omitempty"`
	Payload        map[string]any `json:"payload,omitempty"`
	SelectedColors []string       `json:"selected_colors"`
	SetsCount      int            `json:"sets"`
	Sizes          []string       `json:"sizes,omitempty"`
	PerSizeCount   map[string]int `json:"per_size,omitempty"`
}

// NewLineItem starts an empty line item for entry.
func NewLineItem(e CatalogEntry) LineItem {
	item := LineItem{
		EntryID:        e.ID,
		Name:           e.Name,
		ImageURL:       e.ImageURL,
		Payload:        e.Payload,
		SelectedColors: []string{},
	}
	if len(e.Sizes) > 0 {
		item.Sizes = append([]string(nil), e.Sizes...)
		item.PerSizeCount = make(map[string]int, len(e.Sizes))
		for _, s := range e.Sizes {
			item.PerSizeCount[s] = 0
		}
	}
	return item
}

// NewSelection builds a line item for entry with the buyer's initial
// choices. Colors and sizes must be ones the entry offers; their spelling
// is taken from the entry.
func NewSelection(e CatalogEntry, colors []string, sets int, perSize map[string]int) (LineItem, error) {
	item := NewLineItem(e)
	item.SetsCount = capQuantity(sets)

	for _, c := range DedupeColors(colors) {
		if len(e.Colors) > 0 {
			idx := indexOfColor(e.Colors, c)
			if idx < 0 {
				return LineItem{}, NewUnknownColorError(e.ID, c)
			}
			c = e.Colors[idx]
		}
		item.SelectedColors = append(item.SelectedColors, c)
	}

	for size, n := range perSize {
		label, ok := item.hasSize(size)
		if !ok {
			return LineItem{}, NewUnknownSizeError(e.ID, size)
		}
		item.PerSizeCount[label] = capQuantity(n)
	}
	return item, nil
}

// HasSizes reports whether quantities are tracked per size.
func (li *LineItem) HasSizes() bool {
	return len(li.Sizes) > 0
}

// ColorsCount is the piece multiplier: never less than one, so an item
// without selected colors still occupies one color slot.
func (li *LineItem) ColorsCount() int {
	return max(1, len(li.SelectedColors))
}

// Quantity is the per-color quantity: the size counts summed, or the sets.
func (li *LineItem) Quantity() int {
	if !li.HasSizes() {
		return li.SetsCount
	}
	total := 0
	for _, s := range li.Sizes {
		total += li.PerSizeCount[s]
	}
	return total
}

// TotalPieces is what the item asks of stock.
func (li *LineItem) TotalPieces() int {
	return li.Quantity() * li.ColorsCount()
}

// Clone returns a deep copy.
func (li *LineItem) Clone() *LineItem {
	c := *li
	c.SelectedColors = append([]string{}, li.SelectedColors...)
	c.Sizes = append([]string(nil), li.Sizes...)
	if li.PerSizeCount != nil {
		c.PerSizeCount = make(map[string]int, len(li.PerSizeCount))
		for k, v := range li.PerSizeCount {
			c.PerSizeCount[k] = v
		}
	}
	if li.Payload != nil {
		c.Payload = make(map[string]any, len(li.Payload))
		for k, v := range li.Payload {
			c.Payload[k] = v
		}
	}
	return &c
}

// hasSize returns the stored label matching size, ignoring case.
func (li *LineItem) hasSize(size string) (string, bool) {
	key := foldKey(size)
	for _, s := range li.Sizes {
		if foldKey(s) == key {
			return s, true
		}
	}
	return "", false
}

func (li *LineItem) normalizeSizes() {
	if !li.HasSizes() {
		return
	}
	if li.PerSizeCount == nil {
		li.PerSizeCount = make(map[string]int, len(li.Sizes))
	}
	for _, s := range li.Sizes {
		li.PerSizeCount[s] = capQuantity(li.PerSizeCount[s])
	}
}

// ParseQuantity reads user input as a non-negative integer. Anything that
// is not one (empty, negative, fractional, text) reads as zero; values
// beyond MaxQuantity read as MaxQuantity.
func ParseQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return MaxQuantity
	}
	if err != nil {
		return 0
	}
	return capQuantity(n)
}

func foldKey(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

// DedupeColors drops blanks and case-insensitive duplicates, keeping the
// first spelling seen.
func DedupeColors(colors []string) []string {
	out := make([]string, 0, len(colors))
	seen := make(map[string]struct{}, len(colors))
	for _, c := range colors {
		k := foldKey(c)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, strings.TrimSpace(c))
	}
	return out
}

// UnionColors is a followed by the colors of b it does not already hold.
func UnionColors(a, b []string) []string {
	return DedupeColors(append(append([]string{}, a...), b...))
}

func indexOfColor(colors []string, c string) int {
	k := foldKey(c)
	for i, existing := range colors {
		if foldKey(existing) == k {
			return i
		}
	}
	return -1
}
