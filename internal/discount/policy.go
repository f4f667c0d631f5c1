// Package discount holds the referral discount rules. Everything here is pure.
package discount

import (
	"github.com/shopspring/decimal"
)

const (
	RateStep           = 3
	MaxRate            = 9
	BonusRate          = 3
	BonusEligibleCount = 3
)

var hundred = decimal.NewFromInt(100)

// Result is the discount a referrer gets at a given referral count.
type Result struct {
	Rate          int     `json:"rate"`
	Amount        float64 `json:"amount"`
	OriginalPrice float64 `json:"originalPrice"`
	FinalPrice    float64 `json:"finalPrice"`
	ReferralLevel int     `json:"referralLevel"`
}

// BonusResult is the one-time +3% applied on top of an already discounted price.
type BonusResult struct {
	PreviousPrice float64 `json:"previousPrice"`
	Amount        float64 `json:"amount"`
	FinalPrice    float64 `json:"finalPrice"`
}

// RateFor returns min(3 + 3*count, 9). Negative counts count as zero.
func RateFor(referralCount int) int {
	if referralCount < 0 {
		referralCount = 0
	}
	rate := RateStep + RateStep*referralCount
	if rate > MaxRate || rate < 0 {
		rate = MaxRate
	}
	return rate
}

// LevelFor maps a rate onto its tier: 3 -> 1, 6 -> 2, 9 -> 3.
func LevelFor(rate int) int {
	if rate <= 0 {
		return 0
	}
	return (rate + RateStep - 1) / RateStep
}

// Compute evaluates the policy for basePrice at referralCount.
func Compute(basePrice float64, referralCount int) Result {
	if basePrice < 0 {
		basePrice = 0
	}
	rate := RateFor(referralCount)

	price := decimal.NewFromFloat(basePrice)
	amount := price.Mul(decimal.NewFromInt(int64(rate))).Div(hundred).Round(2)
	final := price.Sub(amount).Round(2)

	return Result{
		Rate:          rate,
		Amount:        amount.InexactFloat64(),
		OriginalPrice: price.Round(2).InexactFloat64(),
		FinalPrice:    final.InexactFloat64(),
		ReferralLevel: LevelFor(rate),
	}
}

// PriceAt returns basePrice reduced by rate percent. A rate of 0 returns the
// base price unchanged.
func PriceAt(basePrice float64, rate int) float64 {
	if basePrice < 0 {
		basePrice = 0
	}
	if rate <= 0 {
		return decimal.NewFromFloat(basePrice).Round(2).InexactFloat64()
	}
	price := decimal.NewFromFloat(basePrice)
	amount := price.Mul(decimal.NewFromInt(int64(rate))).Div(hundred).Round(2)
	return price.Sub(amount).Round(2).InexactFloat64()
}

// Bonus takes a further 3% off currentFinal.
func Bonus(currentFinal float64) BonusResult {
	if currentFinal < 0 {
		currentFinal = 0
	}
	current := decimal.NewFromFloat(currentFinal)
	amount := current.Mul(decimal.NewFromInt(BonusRate)).Div(hundred).Round(2)
	return BonusResult{
		PreviousPrice: current.Round(2).InexactFloat64(),
		Amount:        amount.InexactFloat64(),
		FinalPrice:    current.Sub(amount).Round(2).InexactFloat64(),
	}
}

// IsStandardRate reports whether rate is one of the tier rates.
func IsStandardRate(rate int) bool {
	return rate == 3 || rate == 6 || rate == 9
}

// Saved returns from - to, rounded to cents.
func Saved(from, to float64) float64 {
	return decimal.NewFromFloat(from).Sub(decimal.NewFromFloat(to)).Round(2).InexactFloat64()
}
