package adapters

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"b2b-orders/internal/orders/domain"
)

// Historical key names of the upstream catalog rows, in order of preference.
var (
	idKeys         = []string{"id", "sku", "designId", "design_id"}
	nameKeys       = []string{"name", "itemName", "item_name", "designName", "design_name"}
	imageKeys      = []string{"imageUrl", "image_url", "imageURL", "image"}
	colorKeys      = []string{"colors", "colours", "colorNames", "color_names"}
	sizeKeys       = []string{"sizes", "sizeLabels", "size_labels"}
	closingKeys    = []string{"closingStock", "closing_stock", "ClosingStock", "stock"}
	productionKeys = []string{"productionQty", "production_qty", "inProduction", "in_production", "wip"}
	availableKeys  = []string{"available", "availableQty", "available_qty"}
	priceKeys      = []string{"price", "unitPrice", "unit_price"}
)

// NormalizeRecord maps a raw catalog row onto a CatalogEntry. Numbers that
// cannot be read count as 0; an unreadable available override counts as
// absent.
func NormalizeRecord(raw map[string]any) domain.CatalogEntry {
	e := domain.CatalogEntry{
		ID:       toString(lookup(raw, idKeys)),
		Name:     toString(lookup(raw, nameKeys)),
		ImageURL: toString(lookup(raw, imageKeys)),
		Colors:   domain.DedupeColors(toList(lookup(raw, colorKeys))),
		Sizes:    domain.DedupeColors(toList(lookup(raw, sizeKeys))),
		Payload:  raw,
	}

	e.ClosingStock, _ = toInt(lookup(raw, closingKeys))
	e.ProductionQty, _ = toInt(lookup(raw, productionKeys))
	if n, ok := toInt(lookup(raw, availableKeys)); ok {
		e.Available = &n
	}
	if f, ok := toFloat(lookup(raw, priceKeys)); ok {
		e.UnitPrice = &f
	}
	return e
}

func lookup(raw map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case int:
		return strconv.Itoa(s)
	default:
		return ""
	}
}

// toList accepts a JSON array or a comma separated string
func toList(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		parts := strings.Split(l, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}
