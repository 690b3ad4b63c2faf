package domain

import "fmt"

// SortField selects the comparator used for a column.
type SortField string

const (
	SortByName      SortField = "name"
	SortByMarketCap SortField = "marketCap"
	SortByPrice     SortField = "price"
	SortByVolume    SortField = "volume"
	SortByTxCount   SortField = "txCount"
)

// SortOrder is ascending or descending
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortConfig is the per-category sort selection.
type SortConfig struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// DefaultSortConfig sorts by market cap, largest first.
func DefaultSortConfig() SortConfig {
	return SortConfig{Field: SortByMarketCap, Order: SortDesc}
}

// Toggle mimics clicking a column header: the active field flips its order,
// any other field becomes active in descending order.
func (c SortConfig) Toggle(field SortField) SortConfig {
	if c.Field == field {
		if c.Order == SortAsc {
			return SortConfig{Field: field, Order: SortDesc}
		}
		return SortConfig{Field: field, Order: SortAsc}
	}
	return SortConfig{Field: field, Order: SortDesc}
}

// Validate rejects fields and orders outside the closed sets.
func (c SortConfig) Validate() error {
	switch c.Field {
	case SortByName, SortByMarketCap, SortByPrice, SortByVolume, SortByTxCount:
	default:
		return fmt.Errorf("unknown sort field %q", c.Field)
	}
	if c.Order != SortAsc && c.Order != SortDesc {
		return fmt.Errorf("unknown sort order %q", c.Order)
	}
	return nil
}

// ParseSortField accepts the field names plus the "mc" shorthand.
func ParseSortField(s string) (SortField, error) {
	switch s {
	case "mc", string(SortByMarketCap):
		return SortByMarketCap, nil
	case string(SortByName), string(SortByPrice), string(SortByVolume), string(SortByTxCount):
		return SortField(s), nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}
