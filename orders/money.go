package orders

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount to cents, rounding half up:
// 15.005 becomes 1501. The arithmetic is exact, so no binary float error
// can push a half-cent the wrong way.
func ToMinorUnits(total decimal.Decimal) int64 {
	return total.Mul(hundred).Round(0).IntPart()
}
