package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"pulse/internal/domain"
	"pulse/internal/feed"
	"pulse/internal/format"
	"pulse/internal/selector"
	"pulse/internal/store"
)

const maxRenderedNotifications = 5

// HistorySource returns the recent prices of a token, oldest first.
type HistorySource interface {
	History(tokenID string) []float64
}

// Dashboard renders the three token columns, the watchlist and recent
// notifications as plain text.
type Dashboard struct {
	tokens    *store.TokenStore
	ui        *store.UIStore
	watchlist *store.WatchlistStore
	views     *selector.Cache
	history   HistorySource
	now       func() time.Time
}

// NewDashboard creates a dashboard over the given stores. history may be nil,
// in which case every trend marker is flat.
func NewDashboard(tokens *store.TokenStore, ui *store.UIStore, watchlist *store.WatchlistStore, views *selector.Cache, history HistorySource) *Dashboard {
	return &Dashboard{
		tokens:    tokens,
		ui:        ui,
		watchlist: watchlist,
		views:     views,
		history:   history,
		now:       time.Now,
	}
}

// Column returns the processed token list of one category, using the
// memoized selector result when the store has not changed.
func (d *Dashboard) Column(snap store.TokenSnapshot, c domain.Category) []domain.Token {
	return d.views.Process(string(c), snap.Version, snap.ByCategory[c], snap.SearchQuery, snap.SortConfigs[c])
}

// Render writes the current state to w. A failing column shows its error and
// a retry hint without affecting the other columns.
func (d *Dashboard) Render(w io.Writer) error {
	snap := d.tokens.Snapshot()
	ui := d.ui.Snapshot()
	now := d.now()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if q := strings.TrimSpace(snap.SearchQuery); q != "" {
		fmt.Fprintf(tw, "search: %q\n", q)
	}

	for _, c := range domain.Categories {
		cfg := snap.SortConfigs[c]
		rows := d.Column(snap, c)
		fmt.Fprintf(tw, "== %s (%d) sort: %s %s ==\n", c.Title(), len(rows), cfg.Field, cfg.Order)

		if msg, failed := snap.Errors[string(c)]; failed {
			fmt.Fprintf(tw, "  ! %s (retry: pulse refetches %s automatically)\n", msg, c)
		}
		if snap.Loading[string(c)] && len(rows) == 0 {
			fmt.Fprintln(tw, "  loading...")
			continue
		}
		if len(rows) == 0 {
			fmt.Fprintln(tw, "  no tokens")
			continue
		}
		for _, t := range rows {
			d.writeRow(tw, t, ui.DisplayMode, now)
		}
	}

	if ids := d.watchlist.IDs(); len(ids) > 0 {
		watched := selector.Watched(knownTokens(snap), ids)
		fmt.Fprintf(tw, "== Watchlist (%d) ==\n", len(watched))
		for _, t := range watched {
			d.writeRow(tw, t, domain.DisplayCompact, now)
		}
	}

	if n := len(ui.Notifications); n > 0 {
		fmt.Fprintln(tw, "== Notifications ==")
		start := max(0, n-maxRenderedNotifications)
		for _, note := range ui.Notifications[start:] {
			fmt.Fprintf(tw, "  [%s]\t%s\t%s\n", note.Severity, format.Time(note.CreatedAt), note.Message)
		}
	}

	return tw.Flush()
}

func (d *Dashboard) writeRow(w io.Writer, t domain.Token, mode domain.DisplayMode, now time.Time) {
	star := " "
	if d.watchlist.IsWatched(t.ID) {
		star = "*"
	}
	if mode == domain.DisplayCompact {
		fmt.Fprintf(w, "  %s %s\t%s\t%s\n",
			star, t.Symbol, "$"+format.Price(t.Price, 6), format.Percent(t.PriceChange24h, 2))
		return
	}
	fmt.Fprintf(w, "  %s %s\t%s\t%s\t%s %s\tMC %s\tV %s\tTX %s\t%s\n",
		star,
		t.Symbol,
		t.Name,
		"$"+format.Price(t.Price, 6),
		d.trendMarker(t.ID),
		format.Percent(t.PriceChange24h, 2),
		"$"+format.Number(t.MarketCap, 1),
		"$"+format.Number(t.Volume24h, 1),
		format.Number(float64(t.TxCount), 0),
		format.RelativeTime(t.CreatedAt, now),
	)
}

// trendMarker is the momentum arrow, suffixed with "x" when the newest value
// crossed the averages.
func (d *Dashboard) trendMarker(id string) string {
	if d.history == nil {
		return feed.TrendFlat.Arrow()
	}
	values := d.history.History(id)
	marker := feed.Momentum(values, feed.ShortPeriod, feed.LongPeriod).Arrow()
	if feed.Cross(values, feed.ShortPeriod, feed.LongPeriod) != feed.TrendFlat {
		marker += "x"
	}
	return marker
}

// knownTokens merges the category views and the all-tokens view, first occurrence wins.
func knownTokens(snap store.TokenSnapshot) []domain.Token {
	seen := make(map[string]struct{})
	var out []domain.Token
	add := func(list []domain.Token) {
		for _, t := range list {
			if _, ok := seen[t.ID]; ok {
				continue
			}
			seen[t.ID] = struct{}{}
			out = append(out, t)
		}
	}
	for _, c := range domain.Categories {
		add(snap.ByCategory[c])
	}
	add(snap.All)
	return out
}
