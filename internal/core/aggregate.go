package core

import "sort"

type (
	// DailyTotal is one row of the daily summary view: an exact date and
	// the sum of all payment amounts on it.
	DailyTotal struct {
		Date  string
		Total Money
	}

	// MonthCell is one day of the month grid: category breakdown plus the
	// day total. Every day of the target month gets a cell, zero-filled
	// when nothing is due.
	MonthCell struct {
		Day      int
		FMCG     Money
		Homeware Money
		Total    Money
	}
)

// DailyTotals groups payments by exact date text and sums their amounts.
// The result is sorted ascending; the canonical zero-padded date form makes
// that chronological. Output depends only on the set of payments, not on
// insertion order.
func DailyTotals(payments []Payment) []DailyTotal {
	byDate := make(map[string]Money)
	for _, p := range payments {
		key := p.Date.String()
		byDate[key] = byDate[key].Add(p.Amount)
	}

	out := make([]DailyTotal, 0, len(byDate))
	for date, total := range byDate {
		out = append(out, DailyTotal{Date: date, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// MonthCells computes the per-day category breakdown for one target month.
// It always returns exactly DaysInMonth(year, month) cells. A payment whose
// category somehow escaped the closed set would count toward the day total
// only; record invariants keep that from happening in practice.
func MonthCells(payments []Payment, year, month int) []MonthCell {
	days := DaysInMonth(year, month)
	cells := make([]MonthCell, days)
	for i := range cells {
		cells[i].Day = i + 1
	}

	for _, p := range payments {
		if !p.Date.In(year, month) {
			continue
		}
		if p.Date.Day < 1 || p.Date.Day > days {
			continue
		}
		cell := &cells[p.Date.Day-1]
		cell.Total = cell.Total.Add(p.Amount)
		switch p.Category {
		case FMCG:
			cell.FMCG = cell.FMCG.Add(p.Amount)
		case Homeware:
			cell.Homeware = cell.Homeware.Add(p.Amount)
		}
	}
	return cells
}

// MaxTotal returns the largest day total across the cells, zero when every
// day is empty.
func MaxTotal(cells []MonthCell) Money {
	var max Money
	for _, c := range cells {
		if c.Total.Cents > max.Cents {
			max = c.Total
		}
	}
	return max
}
