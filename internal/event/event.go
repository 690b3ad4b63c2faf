// Package event defines the messages serialized through the dispatcher loop.
package event

import (
	"time"

	"pulse/internal/domain"
)

// Type identifies an event kind
type Type uint8

const (
	TypeUnknown Type = iota
	TypePriceUpdate
	TypeSortChange
)

func (t Type) String() string {
	switch t {
	case TypePriceUpdate:
		return "price_update"
	case TypeSortChange:
		return "sort_change"
	default:
		return "unknown"
	}
}

// Event is anything the dispatcher can process.
type Event interface {
	GetSeq() uint64
	SetSeq(uint64)
	GetType() Type
	GetTime() time.Time
}

// BaseEvent carries the fields shared by every event.
// Seq is assigned by the dispatcher on receipt.
type BaseEvent struct {
	Seq uint64    `json:"seq"`
	Ts  time.Time `json:"ts"`
}

func (e *BaseEvent) GetSeq() uint64     { return e.Seq }
func (e *BaseEvent) SetSeq(seq uint64)  { e.Seq = seq }
func (e *BaseEvent) GetTime() time.Time { return e.Ts }

// PriceUpdateEvent wraps one feed update.
type PriceUpdateEvent struct {
	BaseEvent
	Update domain.PriceUpdate `json:"update"`
}

func (e *PriceUpdateEvent) GetType() Type { return TypePriceUpdate }

// SortChangeEvent applies a column sort selection. When Result is set, the
// outcome is sent on it; it needs room for one value.
type SortChangeEvent struct {
	BaseEvent
	Category domain.Category   `json:"category"`
	Config   domain.SortConfig `json:"config"`
	Result   chan<- error      `json:"-"`
}

func (e *SortChangeEvent) GetType() Type { return TypeSortChange }
