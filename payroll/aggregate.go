package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// TotalDuration sums the wall-clock length of every shift overlapping the
// period (shift.Start <= period.End AND shift.End > period.Start). Shifts are
// counted whole: this is looser than Decompose's inclusion test, so a shift
// straddling the period start counts here in full while Decompose drops its
// first piece.
func TotalDuration(shifts []Shift, period ReportingPeriod) time.Duration {
	var total time.Duration
	for _, s := range shifts {
		if period.Overlaps(s) {
			total += s.Duration()
		}
	}
	return total
}

// TotalEarned is sum(whole minutes * rate / 60) over all entries, including
// the stacked bonus entries. Partial minutes are truncated per entry.
func TotalEarned(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		minutes := decimal.NewFromInt(int64(e.Duration / time.Minute))
		total = total.Add(minutes.Mul(decimal.NewFromFloat(e.RatePerHour)))
	}
	return total.Div(sixty)
}

// =============================================================================
// RATE BUCKETS - Per-rate breakdown for reports
// =============================================================================

// RateBucket is the time paid at one rate within one entry kind.
type RateBucket struct {
	Kind        EntryKind
	RatePerHour float64
	Duration    time.Duration
	Earned      decimal.Decimal
}

// GroupByRate merges entries with the same kind and rate, in first-seen order.
func GroupByRate(entries []Entry) []RateBucket {
	type bucketKey struct {
		kind EntryKind
		rate float64
	}
	index := make(map[bucketKey]int)
	var buckets []RateBucket
	for _, e := range entries {
		k := bucketKey{e.Kind, e.RatePerHour}
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, RateBucket{Kind: e.Kind, RatePerHour: e.RatePerHour})
		}
		buckets[i].Duration += e.Duration
		buckets[i].Earned = buckets[i].Earned.Add(TotalEarned([]Entry{e}))
	}
	return buckets
}

// HoursMinutes splits d into whole hours and the remaining whole minutes.
func HoursMinutes(d time.Duration) (hours, minutes int64) {
	return int64(d / time.Hour), int64(d % time.Hour / time.Minute)
}
