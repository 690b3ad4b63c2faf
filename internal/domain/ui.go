package domain

import "time"

// ModalKind identifies one of the independent dialogs.
type ModalKind string

const (
	ModalBuy     ModalKind = "buy"
	ModalSell    ModalKind = "sell"
	ModalDetails ModalKind = "details"
)

// ModalKinds lists all dialogs
var ModalKinds = []ModalKind{ModalBuy, ModalSell, ModalDetails}

// ModalState is open/closed plus the token the dialog is bound to.
// A closed modal never carries a token id.
type ModalState struct {
	IsOpen  bool   `json:"is_open"`
	TokenID string `json:"token_id,omitempty"`
}

// DisplayMode is the card density preference.
type DisplayMode string

const (
	DisplayCompact  DisplayMode = "compact"
	DisplayDetailed DisplayMode = "detailed"
)

// Severity of a notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Notification is a transient toast message.
type Notification struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"timestamp"`
}
