package models

import "time"

const DiscountsEnabledKey = "discounts_enabled"

type Setting struct {
	Key       string    `json:"key"`
	BoolValue bool      `json:"boolValue"`
	UpdatedAt time.Time `json:"updatedAt"`
}
