package models

import (
	"strings"
	"time"
)

type Customer struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`

	Price        *float64 `json:"price"`
	DiscountRate *int     `json:"discountRate"`
	FinalPrice   *float64 `json:"finalPrice"`

	// Reference is the referral code this customer redeemed, if any.
	Reference      string  `json:"reference"`
	MyReferralCode string  `json:"myReferralCode"`
	ReferralCount  int     `json:"referralCount"`
	TotalEarnings  float64 `json:"totalEarnings"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CustomerInput is the create/update payload. Nil fields are left untouched on update.
type CustomerInput struct {
	FirstName *string  `json:"firstName"`
	LastName  *string  `json:"lastName"`
	Company   *string  `json:"company"`
	Email     *string  `json:"email"`
	Phone     *string  `json:"phone"`
	Address   *string  `json:"address"`
	City      *string  `json:"city"`
	Postcode  *string  `json:"postcode"`
	Price     *float64 `json:"price"`
	Reference *string  `json:"reference"`
}

type CustomerPage struct {
	Count    int        `json:"count"`
	Page     int        `json:"page"`
	Size     int        `json:"size"`
	Next     string     `json:"next,omitempty"`
	Previous string     `json:"previous,omitempty"`
	Results  []Customer `json:"results"`
}

// Optional-value helpers for the nullable columns.

func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }

func String(v string) *string { return &v }
