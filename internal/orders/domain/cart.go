package domain

import "time"

// Cart is the ordered set of line items owned by one identity. There is
// at most one line item per catalog entry.
type Cart struct {
	Items     []*LineItem `json:"items"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewCart returns an empty cart
func NewCart() *Cart {
	return &Cart{Items: []*LineItem{}}
}

// Get returns the line item for id, or nil
func (c *Cart) Get(id string) *LineItem {
	for _, li := range c.Items {
		if li.EntryID == id {
			return li
		}
	}
	return nil
}

func (c *Cart) indexOf(id string) int {
	for i, li := range c.Items {
		if li.EntryID == id {
			return i
		}
	}
	return -1
}

// Add inserts item, or merges it into the line item already held for the
// same entry. The stored line item is returned.
func (c *Cart) Add(item LineItem) *LineItem {
	if existing := c.Get(item.EntryID); existing != nil {
		mergeInto(existing, &item)
		return existing
	}

	li := item.Clone()
	li.SelectedColors = DedupeColors(li.SelectedColors)
	li.SetsCount = capQuantity(li.SetsCount)
	li.normalizeSizes()
	c.Items = append(c.Items, li)
	return li
}

// Remove drops the line item for id. It reports whether one was held.
func (c *Cart) Remove(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// LineItemPatch holds the fields an explicit edit overwrites. Nil fields
// are left alone.
type LineItemPatch struct {
	SelectedColors []string       `json:"selected_colors,omitempty"`
	SetsCount      *int           `json:"sets,omitempty"`
	PerSizeCount   map[string]int `json:"per_size,omitempty"`
	Name           *string        `json:"name,omitempty"`
	ImageURL       *string        `json:"image_url,omitempty"`
}

// Update writes patch over the line item for id. Colors given here replace
// the selection; they are not unioned like on Add.
func (c *Cart) Update(id string, patch LineItemPatch) (*LineItem, error) {
	li := c.Get(id)
	if li == nil {
		return nil, NewLineItemNotFound(id)
	}

	var counts map[string]int
	if patch.PerSizeCount != nil && li.HasSizes() {
		counts = make(map[string]int, len(li.Sizes))
		for _, s := range li.Sizes {
			counts[s] = 0
		}
		for k, v := range patch.PerSizeCount {
			label, ok := li.hasSize(k)
			if !ok {
				return nil, NewUnknownSizeError(id, k)
			}
			counts[label] = capQuantity(v)
		}
	}

	if counts != nil {
		li.PerSizeCount = counts
	}
	if patch.SelectedColors != nil {
		li.SelectedColors = DedupeColors(patch.SelectedColors)
	}
	if patch.SetsCount != nil {
		li.SetsCount = capQuantity(*patch.SetsCount)
	}
	if patch.Name != nil {
		li.Name = *patch.Name
	}
	if patch.ImageURL != nil {
		li.ImageURL = *patch.ImageURL
	}
	return li, nil
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []*LineItem{}
}

// TotalSets sums the per-color quantity of every line item
func (c *Cart) TotalSets() int {
	total := 0
	for _, li := range c.Items {
		total += li.Quantity()
	}
	return total
}

// TotalPieces sums what every line item asks of stock
func (c *Cart) TotalPieces() int {
	total := 0
	for _, li := range c.Items {
		total += li.TotalPieces()
	}
	return total
}

// TotalLineItems is the number of distinct entries in the cart
func (c *Cart) TotalLineItems() int {
	return len(c.Items)
}

// IsEmpty reports whether the cart holds no line items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// EntryIDs lists the catalog entries referenced by the cart, in order
func (c *Cart) EntryIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, li := range c.Items {
		ids = append(ids, li.EntryID)
	}
	return ids
}

// Clone returns a deep copy
func (c *Cart) Clone() *Cart {
	out := &Cart{Items: make([]*LineItem, 0, len(c.Items)), UpdatedAt: c.UpdatedAt}
	for _, li := range c.Items {
		out.Items = append(out.Items, li.Clone())
	}
	return out
}

// MergeCarts folds source into target, which is kept as the merge result.
// Items held by both are merged like on Add; items only in source are
// copied in.
func MergeCarts(target, source *Cart) *Cart {
	if target == nil {
		target = NewCart()
	}
	if source == nil {
		return target
	}
	for _, li := range source.Items {
		target.Add(*li)
	}
	return target
}

// mergeInto sums quantities, unions colors and fills in descriptive fields
// missing from dst.
func mergeInto(dst, src *LineItem) {
	dst.SelectedColors = UnionColors(dst.SelectedColors, src.SelectedColors)
	dst.SetsCount = capQuantity(capQuantity(dst.SetsCount) + capQuantity(src.SetsCount))

	if len(dst.Sizes) == 0 && len(src.Sizes) > 0 {
		dst.Sizes = append([]string(nil), src.Sizes...)
	}
	if dst.HasSizes() {
		dst.normalizeSizes()
		for k, v := range src.PerSizeCount {
			if v <= 0 {
				continue
			}
			if label, ok := dst.hasSize(k); ok {
				dst.PerSizeCount[label] = capQuantity(dst.PerSizeCount[label] + capQuantity(v))
			}
		}
	}

	if dst.Name == "" {
		dst.Name = src.Name
	}
	if dst.ImageURL == "" {
		dst.ImageURL = src.ImageURL
	}
	if len(dst.Payload) == 0 && len(src.Payload) > 0 {
		dst.Payload = src.Clone().Payload
	}
}
