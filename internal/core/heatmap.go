package core

// HeatLevel classifies a day's total against the month maximum as a
// discrete intensity 0-7. Band upper boundaries are inclusive, so a ratio
// sitting exactly on a boundary takes the lower level. Level is 0 whenever
// the month maximum or the amount itself is zero.
func HeatLevel(amount, maxAmount Money) int {
	if maxAmount.Cents == 0 || amount.Cents == 0 {
		return 0
	}
	ratio := float64(amount.Cents) / float64(maxAmount.Cents)
	switch {
	case ratio <= 0.10:
		return 1
	case ratio <= 0.25:
		return 2
	case ratio <= 0.40:
		return 3
	case ratio <= 0.60:
		return 4
	case ratio <= 0.80:
		return 5
	case ratio <= 0.95:
		return 6
	default:
		return 7
	}
}
