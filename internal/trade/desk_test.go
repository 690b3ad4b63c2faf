package trade

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse/internal/domain"
	"pulse/internal/store"
)

type lookup map[string]domain.Token

func (l lookup) Token(id string) (domain.Token, bool) {
	t, ok := l[id]
	return t, ok
}

func newDesk(settlement time.Duration) (*Desk, *store.UIStore) {
	tokens := lookup{
		"5":    {ID: "5", Symbol: "PEPE", Price: 0.2},
		"free": {ID: "free", Symbol: "FREE", Price: 0},
	}
	ui := store.NewUIStore(0, domain.DisplayDetailed, nil)
	return NewDesk(tokens, ui, settlement, decimal.RequireFromString("0.001")), ui
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1.5", "1.5", false},
		{"  2 ", "2", false},
		{"", "", true},
		{"abc", "", true},
		{"0", "", true},
		{"-3", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDesk_Quote(t *testing.T) {
	d, _ := newDesk(0)

	q, err := d.Quote("5", decimal.RequireFromString("3"))
	require.NoError(t, err)
	assert.Equal(t, "15", q.Received.String())
	assert.Equal(t, "PEPE", q.Symbol)

	// zero price falls back so the quote stays finite
	q, err = d.Quote("free", decimal.RequireFromString("1"))
	require.NoError(t, err)
	assert.Equal(t, "1000", q.Received.String())

	_, err = d.Quote("missing", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrUnknownToken)
}

func TestDesk_BuySuccess(t *testing.T) {
	d, ui := newDesk(10 * time.Millisecond)
	require.NoError(t, ui.Open(domain.ModalBuy, "5"))
	require.NoError(t, ui.Open(domain.ModalDetails, "5"))

	fill, err := d.Buy(context.Background(), "5", "2")
	require.NoError(t, err)
	assert.NotEmpty(t, fill.ID)
	assert.Equal(t, "10", fill.Quote.Received.String())

	snap := ui.Snapshot()
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, domain.SeveritySuccess, snap.Notifications[0].Severity)
	assert.Equal(t, "Successfully purchased 2 PEPE", snap.Notifications[0].Message)
	assert.False(t, snap.Modals[domain.ModalBuy].IsOpen)
	assert.True(t, snap.Modals[domain.ModalDetails].IsOpen, "only the buy modal closes")

	assert.Len(t, d.Fills(), 1)
}

func TestDesk_BuyInvalidAmount(t *testing.T) {
	d, ui := newDesk(0)
	require.NoError(t, ui.Open(domain.ModalBuy, "5"))

	_, err := d.Buy(context.Background(), "5", "lots")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	snap := ui.Snapshot()
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, domain.SeverityError, snap.Notifications[0].Severity)
	assert.Equal(t, "Please enter a valid amount", snap.Notifications[0].Message)
	assert.True(t, snap.Modals[domain.ModalBuy].IsOpen, "modal stays open for correction")
	assert.Empty(t, d.Fills())
}

func TestDesk_BuyUnknownToken(t *testing.T) {
	d, ui := newDesk(0)

	_, err := d.Buy(context.Background(), "missing", "1")
	assert.ErrorIs(t, err, domain.ErrUnknownToken)
	assert.Len(t, ui.Snapshot().Notifications, 1)
}

func TestDesk_BuyCancelled(t *testing.T) {
	d, ui := newDesk(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Buy(ctx, "5", "1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ui.Snapshot().Notifications)
	assert.Empty(t, d.Fills())
}
