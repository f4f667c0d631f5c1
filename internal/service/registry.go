package service

import (
	"context"
	"fmt"

	"github.com/Cheertaboi/referral-service/internal/apperr"
	"github.com/Cheertaboi/referral-service/internal/cache"
	"github.com/Cheertaboi/referral-service/internal/concurrency"
	"github.com/Cheertaboi/referral-service/internal/models"
)

// Registry resolves referral codes to customers, remembering code -> id.
type Registry struct {
	customers CustomerStore
	codes     cache.CodeCache
}

func NewRegistry(customers CustomerStore, codes cache.CodeCache) *Registry {
	return &Registry{customers: customers, codes: codes}
}

// Lookup returns a NotFound error when no customer owns code.
func (r *Registry) Lookup(ctx context.Context, code string) (*models.Customer, error) {
	if id, ok := r.codes.Get(ctx, code); ok {
		c, err := r.customers.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load customer %s: %w", id, err)
		}
		if c != nil && c.MyReferralCode == code {
			return c, nil
		}
		r.codes.Delete(ctx, code)
	}

	c, err := r.customers.GetByReferralCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("lookup referral code: %w", err)
	}
	if c == nil {
		return nil, apperr.NotFound("referral code %q not found", code)
	}
	r.codes.Set(ctx, code, c.ID)
	return c, nil
}

func (r *Registry) Remember(ctx context.Context, c *models.Customer) {
	if c.MyReferralCode != "" {
		r.codes.Set(ctx, c.MyReferralCode, c.ID)
	}
}

func (r *Registry) Forget(ctx context.Context, code string) {
	r.codes.Delete(ctx, code)
}

const warmPageSize = 500

// Warm loads every existing code into the cache, one page per task.
func (r *Registry) Warm(ctx context.Context, workers int) (int, error) {
	_, total, err := r.customers.List(ctx, 1, 0)
	if err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	pages := (total + warmPageSize - 1) / warmPageSize

	err = concurrency.Run(ctx, workers, pages, func(ctx context.Context, page int) error {
		customers, _, err := r.customers.List(ctx, warmPageSize, page*warmPageSize)
		if err != nil {
			return fmt.Errorf("load page %d: %w", page, err)
		}
		for i := range customers {
			r.Remember(ctx, &customers[i])
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
