// Package trade simulates the buy flow of the dashboard: quoting, settlement
// delay and the resulting notifications.
package trade

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pulse/internal/domain"
)

// TokenLookup resolves a token by id.
type TokenLookup interface {
	Token(id string) (domain.Token, bool)
}

// UI is the part of the UI store the desk talks to.
type UI interface {
	Notify(severity domain.Severity, message string) domain.Notification
	Close(kind domain.ModalKind) error
}

// Quote is what a given spend buys at the current price.
type Quote struct {
	TokenID  string
	Symbol   string
	Spend    decimal.Decimal
	Price    decimal.Decimal
	Received decimal.Decimal // rounded to 2 places
}

// Fill records a completed simulated purchase.
type Fill struct {
	ID       string
	Quote    Quote
	FilledAt time.Time
}

// Desk executes simulated buys. Nothing leaves the process.
type Desk struct {
	tokens     TokenLookup
	ui         UI
	settlement time.Duration
	fallback   decimal.Decimal // price used when a token has none

	mu    sync.Mutex
	fills []Fill
	now   func() time.Time
}

// NewDesk creates a desk. fallbackPrice replaces non-positive token prices
// so quotes never divide by zero.
func NewDesk(tokens TokenLookup, ui UI, settlement time.Duration, fallbackPrice decimal.Decimal) *Desk {
	return &Desk{
		tokens:     tokens,
		ui:         ui,
		settlement: settlement,
		fallback:   fallbackPrice,
		now:        time.Now,
	}
}

// ParseAmount accepts a positive decimal, surrounding spaces ignored.
func ParseAmount(text string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, text)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s must be positive", domain.ErrInvalidAmount, amount)
	}
	return amount, nil
}

// Quote prices a spend of amount against the token's current price.
func (d *Desk) Quote(tokenID string, amount decimal.Decimal) (Quote, error) {
	tok, ok := d.tokens.Token(tokenID)
	if !ok {
		return Quote{}, fmt.Errorf("%w: %q", domain.ErrUnknownToken, tokenID)
	}

	price := decimal.NewFromFloat(tok.Price)
	if !price.IsPositive() {
		price = d.fallback
	}

	return Quote{
		TokenID:  tok.ID,
		Symbol:   tok.Symbol,
		Spend:    amount,
		Price:    price,
		Received: amount.DivRound(price, 2),
	}, nil
}

// Buy validates amountText, waits for the simulated settlement and reports
// the outcome through notifications. On success the buy modal is closed.
// A cancelled ctx aborts the settlement without notifying.
func (d *Desk) Buy(ctx context.Context, tokenID, amountText string) (Fill, error) {
	amount, err := ParseAmount(amountText)
	if err != nil {
		d.ui.Notify(domain.SeverityError, "Please enter a valid amount")
		return Fill{}, err
	}

	quote, err := d.Quote(tokenID, amount)
	if err != nil {
		d.ui.Notify(domain.SeverityError, "Token not found")
		return Fill{}, err
	}

	if d.settlement > 0 {
		timer := time.NewTimer(d.settlement)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Fill{}, ctx.Err()
		case <-timer.C:
		}
	}

	fill := Fill{ID: uuid.NewString(), Quote: quote, FilledAt: d.now()}
	d.mu.Lock()
	d.fills = append(d.fills, fill)
	d.mu.Unlock()

	d.ui.Notify(domain.SeveritySuccess, fmt.Sprintf("Successfully purchased %s %s", strings.TrimSpace(amountText), quote.Symbol))
	if err := d.ui.Close(domain.ModalBuy); err != nil {
		slog.Warn("Failed to close buy modal", slog.Any("error", err))
	}

	slog.Info("Simulated buy filled",
		slog.String("token", quote.TokenID),
		slog.String("spend", quote.Spend.String()),
		slog.String("received", quote.Received.String()),
	)
	return fill, nil
}

// Fills returns completed purchases, oldest first.
func (d *Desk) Fills() []Fill {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.fills)
}
