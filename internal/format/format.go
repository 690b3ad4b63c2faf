// Package format converts raw token figures into display strings.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var magnitudes = []string{"", "K", "M", "B", "T"}

// Number formats large numbers with a K, M, B or T suffix (1500 -> "1.5K").
func Number(v float64, decimals int) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs < 1000 {
		return fixed(v, decimals)
	}

	i := 0
	for abs >= 1000 && i < len(magnitudes)-1 {
		abs /= 1000
		i++
	}
	return fixed(v/math.Pow(1000, float64(i)), decimals) + magnitudes[i]
}

// Currency formats a USD amount with thousands separators ("$1,234.56").
func Currency(v float64, decimals int) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "$" + grouped(v, decimals)
}

// Percent formats a signed percentage; positives carry an explicit "+".
func Percent(v float64, decimals int) string {
	s := fixed(v, decimals) + "%"
	if v > 0 {
		return "+" + s
	}
	return s
}

// Price keeps small prices readable by switching to exponent notation below 0.0001.
func Price(v float64, decimals int) string {
	if v > 0 && v < 0.0001 {
		return strconv.FormatFloat(v, 'e', 4, 64)
	}
	return fixed(v, decimals)
}

// Time renders the wall-clock time, e.g. "03:04:05 PM".
func Time(t time.Time) string {
	return t.Format("03:04:05 PM")
}

// Date renders e.g. "Jan 2, 2006".
func Date(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// RelativeTime renders the age of t relative to now ("42s ago", "3h ago").
// Anything older than a week falls back to Date.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = 0
	}
	seconds := int64(diff / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case seconds < 60:
		return strconv.FormatInt(seconds, 10) + "s ago"
	case minutes < 60:
		return strconv.FormatInt(minutes, 10) + "m ago"
	case hours < 24:
		return strconv.FormatInt(hours, 10) + "h ago"
	case days < 7:
		return strconv.FormatInt(days, 10) + "d ago"
	}
	return Date(t)
}

func fixed(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return decimal.NewFromFloat(v).StringFixed(int32(decimals))
}

// grouped formats a non-negative value with comma separators in the integer part.
func grouped(v float64, decimals int) string {
	s := fixed(v, decimals)
	intPart, frac, hasFrac := strings.Cut(s, ".")

	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		// beyond int64, leave ungrouped
		return s
	}
	out := humanize.Comma(n)
	if hasFrac {
		out += "." + frac
	}
	return out
}
