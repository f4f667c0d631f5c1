// Package handlers exposes the referral services over HTTP.
package handlers

import (
	"context"

	"github.com/Cheertaboi/referral-service/internal/models"
)

// Service surfaces the handlers depend on (interfaces to allow mocking).

type CustomerService interface {
	Create(ctx context.Context, in models.CustomerInput) (*models.Customer, models.RedemptionResult, error)
	Update(ctx context.Context, id string, in models.CustomerInput) (*models.Customer, models.RedemptionResult, error)
	Get(ctx context.Context, id string) (*models.Customer, error)
	List(ctx context.Context, page, size int) (*models.CustomerPage, error)
	Delete(ctx context.Context, id string) error
	Referrals(ctx context.Context, id string) ([]models.ReferralTransaction, error)
}

type ReferralService interface {
	ValidateReferral(ctx context.Context, req models.ValidationRequest) (*models.ValidationResponse, error)
	SendDiscountEmail(ctx context.Context, req models.SendEmailRequest) (*models.SendEmailResult, error)
	ListTransactions(ctx context.Context, f models.TransactionFilter) ([]models.ReferralTransaction, error)
}

type SettingsService interface {
	DiscountsEnabled(ctx context.Context) (bool, error)
	SetDiscountsEnabled(ctx context.Context, enabled bool) (bool, error)
}
