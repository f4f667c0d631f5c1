package models

import "github.com/Cheertaboi/referral-service/internal/discount"

type ValidationRequest struct {
	ReferralCode string  `json:"referralCode"`
	BasePrice    float64 `json:"basePrice"`
}

type ReferrerSummary struct {
	Name          string `json:"name"`
	ReferralCount int    `json:"referralCount"`
}

// ValidationResponse is a preview only; redemption recomputes at save time.
type ValidationResponse struct {
	Referrer ReferrerSummary `json:"referrer"`
	Discount discount.Result `json:"discount"`
}
