package report

import "github.com/shopspring/decimal"

var (
	hundred     = decimal.NewFromInt(100)
	decimalZero = decimal.Zero
)

// Growth returns (cur-prev)/prev*100, or N/A when prev is 0
func Growth(cur, prev int64) Cell {
	if prev == 0 {
		return NA()
	}
	p := decimal.NewFromInt(prev)
	return Ratio(decimal.NewFromInt(cur).Sub(p).Div(p).Mul(hundred))
}

// Contribution returns cur/total*100, or 0 when total is 0
func Contribution(cur, total int64) Cell {
	if total == 0 {
		return Ratio(decimal.Zero)
	}
	return Ratio(decimal.NewFromInt(cur).Div(decimal.NewFromInt(total)).Mul(hundred))
}

// AverageDaySale divides cur by the days elapsed before the end day. The
// result is unrounded so that DaysOfSupply can divide by it exactly.
func AverageDaySale(cur int64, daysPassed int) decimal.Decimal {
	return decimal.NewFromInt(cur).Div(decimal.NewFromInt(int64(max(daysPassed-1, 1))))
}

// DaysOfSupply returns stock/ads, or N/A when ads is 0
func DaysOfSupply(stock int64, ads decimal.Decimal) Cell {
	if ads.IsZero() {
		return NA()
	}
	return Ratio(decimal.NewFromInt(stock).Div(ads))
}

// Pending returns how much of the target is still open. It goes negative
// once the target is exceeded.
func Pending(target, cur int64) int64 {
	return target - cur
}

// RequiredPace spreads pending over the days left in a periodDays-long
// period. N/A when no days are left.
func RequiredPace(pending int64, daysPassed, periodDays int) Cell {
	left := periodDays - daysPassed
	if left <= 0 {
		return NA()
	}
	return Ratio(decimal.NewFromInt(pending).Div(decimal.NewFromInt(int64(left))))
}
