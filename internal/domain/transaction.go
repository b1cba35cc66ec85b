package domain

import (
	"fmt"
	"time"
)

// Transaction pairs an inbound request with its outbound response.
type Transaction struct {
	ID       string
	Start    time.Time
	End      time.Time
	Response string
	Elapsed  time.Duration
	Reset    bool
}

type TransactionTotals struct {
	Count   int
	Resets  int
	Average time.Duration
	Span    time.Duration
}

// Rate is transactions per second over the log span.
func (t TransactionTotals) Rate() float64 {
	if t.Span <= 0 {
		return 0
	}
	return float64(t.Count) / t.Span.Seconds()
}

// FormatSeconds renders d as seconds with millisecond precision.
func FormatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

// FormatSpan renders d as minutes:seconds.
func FormatSpan(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Summarize computes totals over transactions. Only completed transactions
// contribute to the average.
func Summarize(transactions []Transaction) TransactionTotals {
	totals := TransactionTotals{Count: len(transactions)}
	if len(transactions) == 0 {
		return totals
	}

	var sum time.Duration
	var completed int
	first, last := transactions[0].Start, transactions[0].End
	for _, tx := range transactions {
		if tx.Reset {
			totals.Resets++
		}
		if !tx.End.IsZero() {
			sum += tx.Elapsed
			completed++
		}
		if !tx.Start.IsZero() && (first.IsZero() || tx.Start.Before(first)) {
			first = tx.Start
		}
		if tx.End.After(last) {
			last = tx.End
		}
	}

	if completed > 0 {
		totals.Average = sum / time.Duration(completed)
	}
	if !first.IsZero() && last.After(first) {
		totals.Span = last.Sub(first)
	}

	return totals
}
