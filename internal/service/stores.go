package service

import (
	"context"

	"github.com/Cheertaboi/referral-service/internal/models"
)

// Repos required by the services (interfaces so tests can use fakes).

type CustomerStore interface {
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	GetByIDForUpdate(ctx context.Context, id string) (*models.Customer, error)
	GetByReferralCode(ctx context.Context, code string) (*models.Customer, error)
	Create(ctx context.Context, c *models.Customer) error
	Update(ctx context.Context, c *models.Customer) error
	ApplyReferral(ctx context.Context, id string, referralCount, discountRate int, finalPrice, totalEarnings float64) error
	UpdatePricing(ctx context.Context, id string, discountRate int, finalPrice, totalEarnings float64) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]models.Customer, int, error)
}

type TransactionStore interface {
	Create(ctx context.Context, t *models.ReferralTransaction) error
	GetByIDForUpdate(ctx context.Context, id string) (*models.ReferralTransaction, error)
	MarkEmailSent(ctx context.Context, id string, discountRate int, isBonus bool) (bool, error)
	List(ctx context.Context, f models.TransactionFilter) ([]models.ReferralTransaction, error)
}

type SettingsStore interface {
	GetOrCreateBool(ctx context.Context, key string, def bool) (bool, error)
	SetBool(ctx context.Context, key string, value bool) (bool, error)
}

// TxManager runs fn in one database transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// DiscountToggle is the global kill switch for outbound discount emails.
type DiscountToggle interface {
	DiscountsEnabled(ctx context.Context) (bool, error)
}

// Redeemer applies the referrer side of a redemption.
type Redeemer interface {
	Redeem(ctx context.Context, redeemer models.Customer, reference string) models.RedemptionResult
}
