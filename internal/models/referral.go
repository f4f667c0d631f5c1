package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ReferralTransaction is one ledger entry: a redemption of ReferrerCode by NewCustomerID.
type ReferralTransaction struct {
	ID            string    `json:"id"`
	ReferrerCode  string    `json:"referrerCode"`
	NewCustomerID string    `json:"newCustomerId"`
	DiscountRate  int       `json:"discountRate"`
	OriginalPrice float64   `json:"originalPrice"`
	FinalPrice    float64   `json:"finalPrice"`
	ReferralLevel int       `json:"referralLevel"`
	EmailSent     bool      `json:"emailSent"`
	IsBonus       bool      `json:"isBonus"`
	CreatedAt     time.Time `json:"createdAt"`
}

type TransactionFilter struct {
	ReferrerCode string
	PendingOnly  bool
	Limit        int
}

type ReferrerReward struct {
	Rate    int    `json:"rate"`
	Message string `json:"message"`
}

// RedemptionResult reports the side effect of saving a customer with a reference.
type RedemptionResult struct {
	ReferralApplied bool            `json:"referralApplied"`
	ReferrerReward  *ReferrerReward `json:"referrerReward"`
}

// RateChoice is the rate an admin picks when sending a discount email:
// 3, 6, 9, or the "+3" bonus.
type RateChoice struct {
	Rate  int
	Bonus bool
	raw   string
}

const BonusChoice = "+3"

func ParseRateChoice(s string) RateChoice {
	s = strings.TrimSpace(s)
	if s == BonusChoice {
		return RateChoice{Rate: 3, Bonus: true, raw: s}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return RateChoice{raw: s}
	}
	return RateChoice{Rate: n, raw: s}
}

// Valid reports whether the choice is one of 3, 6, 9, "+3".
func (r RateChoice) Valid() bool {
	if r.Bonus {
		return true
	}
	return r.Rate == 3 || r.Rate == 6 || r.Rate == 9
}

func (r RateChoice) String() string {
	if r.Bonus {
		return BonusChoice
	}
	if r.raw != "" {
		return r.raw
	}
	return strconv.Itoa(r.Rate)
}

// UnmarshalJSON accepts a JSON number or string. Unknown values decode
// without error and are rejected later by Valid.
func (r *RateChoice) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = ParseRateChoice(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*r = RateChoice{raw: string(b)}
		return nil
	}
	if f != float64(int(f)) {
		*r = RateChoice{raw: string(b)}
		return nil
	}
	*r = RateChoice{Rate: int(f), raw: strconv.Itoa(int(f))}
	return nil
}

func (r RateChoice) MarshalJSON() ([]byte, error) {
	if r.Bonus {
		return json.Marshal(BonusChoice)
	}
	return json.Marshal(r.Rate)
}

type SendEmailRequest struct {
	TransactionID string     `json:"transactionId"`
	DiscountRate  RateChoice `json:"discountRate"`
}

type SendEmailResult struct {
	TransactionID string     `json:"transactionId"`
	EmailSent     bool       `json:"emailSent"`
	DiscountRate  RateChoice `json:"discountRate"`
	ReferrerEmail string     `json:"referrerEmail"`
	IsBonus       bool       `json:"isBonus"`
}
