package domain

import (
	"fmt"
	"time"
)

// Category groups tokens into the three dashboard columns.
// A token keeps its category for its whole lifetime.
type Category string

const (
	CategoryNewPairs     Category = "new-pairs"
	CategoryFinalStretch Category = "final-stretch"
	CategoryMigrated     Category = "migrated"
)

// Categories lists every category in column order.
var Categories = []Category{CategoryNewPairs, CategoryFinalStretch, CategoryMigrated}

// Title returns the column heading for the category
func (c Category) Title() string {
	switch c {
	case CategoryNewPairs:
		return "New Pairs"
	case CategoryFinalStretch:
		return "Final Stretch"
	case CategoryMigrated:
		return "Migrated"
	default:
		return string(c)
	}
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryNewPairs, CategoryFinalStretch, CategoryMigrated:
		return true
	}
	return false
}

// ParseCategory converts a raw string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Links holds optional social links of a token
type Links struct {
	Website string `json:"website,omitempty"`
	Twitter string `json:"twitter,omitempty"`
	Discord string `json:"discord,omitempty"`
}

// Token is a single tradable token as shown on a card.
type Token struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Symbol         string    `json:"symbol"`
	MarketCap      float64   `json:"mc"`
	Category       Category  `json:"category"`
	Price          float64   `json:"price"`
	PriceChange24h float64   `json:"price_change_24h"` // percent, signed
	Volume24h      float64   `json:"volume_24h"`
	TxCount        int64     `json:"tx_count"`
	CreatedAt      time.Time `json:"created_at"`

	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Links       *Links `json:"links,omitempty"`
}

// Clone returns a copy that shares no mutable state with t.
func (t Token) Clone() Token {
	if t.Links != nil {
		l := *t.Links
		t.Links = &l
	}
	return t
}

// ChangeDirection returns "positive", "negative", or "neutral"
func (t Token) ChangeDirection() string {
	switch {
	case t.PriceChange24h > 0:
		return "positive"
	case t.PriceChange24h < 0:
		return "negative"
	default:
		return "neutral"
	}
}

// PriceUpdate is one simulated market tick for a token.
// It is never stored; the token store folds it into its own record.
// A Relative update moves the stored price by ChangePercent and ignores Price,
// so moves queued behind each other compound instead of overwriting.
type PriceUpdate struct {
	TokenID       string
	Price         float64 // new absolute price, or the feed's estimate when Relative
	ChangePercent float64 // delta added to PriceChange24h
	VolumeDelta   float64 // added to Volume24h
	Relative      bool
	Timestamp     time.Time
}
