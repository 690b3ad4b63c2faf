package feed

// Trend is the direction of a token's recent price history.
type Trend int

const (
	TrendFlat Trend = iota
	TrendUp
	TrendDown
)

// String returns the string representation of Trend
func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return "flat"
	}
}

// Arrow is the single-character marker shown on cards.
func (t Trend) Arrow() string {
	switch t {
	case TrendUp:
		return "^"
	case TrendDown:
		return "v"
	default:
		return "-"
	}
}

// Default SMA periods for card trend markers.
const (
	ShortPeriod = 3
	LongPeriod  = 8
)

// Momentum compares the short and long simple moving averages of the newest
// values (oldest first). Fewer than long values is flat.
func Momentum(values []float64, short, long int) Trend {
	if short <= 0 || short >= long || len(values) < long {
		return TrendFlat
	}
	s, l := sma(values, short), sma(values, long)
	switch {
	case s > l:
		return TrendUp
	case s < l:
		return TrendDown
	default:
		return TrendFlat
	}
}

// Cross reports a crossover on the newest value: TrendUp when the short SMA
// moved above the long one (golden cross), TrendDown for the opposite
// (dead cross), TrendFlat otherwise.
func Cross(values []float64, short, long int) Trend {
	if short <= 0 || short >= long || len(values) < long+1 {
		return TrendFlat
	}
	prev := values[:len(values)-1]
	prevShort, prevLong := sma(prev, short), sma(prev, long)
	currShort, currLong := sma(values, short), sma(values, long)

	switch {
	case prevShort <= prevLong && currShort > currLong:
		return TrendUp
	case prevShort >= prevLong && currShort < currLong:
		return TrendDown
	default:
		return TrendFlat
	}
}

// sma averages the last n values; callers guarantee len(values) >= n.
func sma(values []float64, n int) float64 {
	var sum float64
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n)
}
