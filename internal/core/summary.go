package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DailySeriesWindow caps the daily series at the most recent distinct days.
// A display-window policy, not a storage limit.
const DailySeriesWindow = 14

// Total sums the amounts of a snapshot. Empty snapshots total zero.
func Total(txns []Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txns {
		sum = sum.Add(t.Amount)
	}
	return sum
}

// TodayTotal sums the transactions whose canonical date key matches now's
// local calendar day.
func TodayTotal(txns []Transaction, now time.Time) decimal.Decimal {
	today := DayKey(now)
	sum := decimal.Zero
	for _, t := range txns {
		if t.Date != "" && t.DateKey() == today {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// DailySeries groups a snapshot by canonical date key, sums per key, and
// returns the most recent DailySeriesWindow entries in ascending key order.
// Rows whose date never parsed carry no key and are left out.
func DailySeries(txns []Transaction) []DailyTotal {
	byDay := make(map[string]decimal.Decimal)
	for _, t := range txns {
		key := t.DateKey()
		if key == "" {
			continue
		}
		byDay[key] = byDay[key].Add(t.Amount)
	}

	series := make([]DailyTotal, 0, len(byDay))
	for key, total := range byDay {
		series = append(series, DailyTotal{Date: key, Total: total})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	if len(series) > DailySeriesWindow {
		series = series[len(series)-DailySeriesWindow:]
	}
	return series
}

// Profit is total sales minus total expenses; the sign is the whole
// positive/negative net classification.
func Profit(sales, expenses []Transaction) decimal.Decimal {
	return Total(sales).Sub(Total(expenses))
}
