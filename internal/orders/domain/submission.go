package domain

import "strings"

// SubmissionRow is one flattened order line: a single color (and size)
// of one catalog entry.
type SubmissionRow struct {
	SKU      string `json:"sku"`
	ItemName string `json:"item_name"`
	Color    string `json:"color"`
	Size     string `json:"size,omitempty"`
	Qty      int    `json:"qty"`
}

// ColorSets is the stored quantity of one color of an item
type ColorSets struct {
	Color string         `json:"color"`
	Sets  int            `json:"sets"`
	Sizes map[string]int `json:"sizes,omitempty"`
}

// ItemGroup is the canonical stored shape of an ordered item
type ItemGroup struct {
	ItemName string      `json:"item_name"`
	Colors   []ColorSets `json:"colors"`
}

func (g ItemGroup) clone() ItemGroup {
	out := ItemGroup{ItemName: g.ItemName, Colors: make([]ColorSets, len(g.Colors))}
	for i, c := range g.Colors {
		out.Colors[i] = ColorSets{Color: c.Color, Sets: c.Sets}
		if c.Sizes != nil {
			out.Colors[i].Sizes = make(map[string]int, len(c.Sizes))
			for k, v := range c.Sizes {
				out.Colors[i].Sizes[k] = v
			}
		}
	}
	return out
}

// Submission is what an order is created from
type Submission struct {
	CorrelationID string          `json:"correlation_id"`
	CustomerRef   string          `json:"customer_ref"`
	AgentRef      string          `json:"agent_ref"`
	Source        string          `json:"source"`
	Rows          []SubmissionRow `json:"rows"`
	Items         []ItemGroup     `json:"items"`
	TotalQuantity int             `json:"total_quantity"`
}

// Validate checks what order creation requires: a customer and at least
// one row naming its item.
func (s *Submission) Validate() error {
	if strings.TrimSpace(s.CustomerRef) == "" {
		return ErrCustomerRequired
	}
	if len(s.Rows) == 0 {
		return ErrNoItems
	}
	for _, r := range s.Rows {
		if r.SKU == "" && r.ItemName == "" {
			return ErrNoItems
		}
	}
	return nil
}

// BuildSubmission flattens cart into rows and groups them back by item
// name. A line item emits one row per selected color, or a single row with
// an empty color when none is selected; sized items emit one row per color
// and size. Zero quantities emit nothing.
func BuildSubmission(cart *Cart, customerRef, agentRef string) (*Submission, error) {
	if strings.TrimSpace(customerRef) == "" {
		return nil, ErrCustomerRequired
	}
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	s := &Submission{
		CustomerRef: strings.TrimSpace(customerRef),
		AgentRef:    strings.TrimSpace(agentRef),
	}
	for _, li := range cart.Items {
		s.Rows = append(s.Rows, flatten(li)...)
	}
	if len(s.Rows) == 0 {
		return nil, ErrNoItems
	}

	for _, r := range s.Rows {
		s.TotalQuantity += r.Qty
	}
	s.Items = GroupRows(s.Rows)
	return s, nil
}

func flatten(li *LineItem) []SubmissionRow {
	name := li.Name
	if name == "" {
		name = li.EntryID
	}
	colors := DedupeColors(li.SelectedColors)
	if len(colors) == 0 {
		colors = []string{""}
	}

	var rows []SubmissionRow
	for _, color := range colors {
		if !li.HasSizes() {
			if li.SetsCount > 0 {
				rows = append(rows, SubmissionRow{SKU: li.EntryID, ItemName: name, Color: color, Qty: li.SetsCount})
			}
			continue
		}
		for _, size := range li.Sizes {
			if n := li.PerSizeCount[size]; n > 0 {
				rows = append(rows, SubmissionRow{SKU: li.EntryID, ItemName: name, Color: color, Size: size, Qty: n})
			}
		}
	}
	return rows
}

// GroupRows folds rows into one group per item name, keeping first-seen
// order. Rows of the same item and color are summed.
func GroupRows(rows []SubmissionRow) []ItemGroup {
	var groups []ItemGroup
	index := make(map[string]int)

	for _, r := range rows {
		name := r.ItemName
		if name == "" {
			name = r.SKU
		}
		gi, ok := index[name]
		if !ok {
			gi = len(groups)
			index[name] = gi
			groups = append(groups, ItemGroup{ItemName: name})
		}
		g := &groups[gi]

		ci := -1
		for i := range g.Colors {
			if foldKey(g.Colors[i].Color) == foldKey(r.Color) {
				ci = i
				break
			}
		}
		if ci < 0 {
			g.Colors = append(g.Colors, ColorSets{Color: r.Color})
			ci = len(g.Colors) - 1
		}

		c := &g.Colors[ci]
		c.Sets += r.Qty
		if r.Size != "" {
			if c.Sizes == nil {
				c.Sizes = make(map[string]int)
			}
			c.Sizes[r.Size] += r.Qty
		}
	}
	return groups
}
