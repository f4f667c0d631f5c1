package service

import (
	"context"

	"github.com/Cheertaboi/referral-service/internal/models"
)

// SettingsService reads the flag from the store on every call, so all
// instances agree on it.
type SettingsService struct {
	store SettingsStore
}

func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

// DiscountsEnabled creates the flag as true on first read.
func (s *SettingsService) DiscountsEnabled(ctx context.Context) (bool, error) {
	return s.store.GetOrCreateBool(ctx, models.DiscountsEnabledKey, true)
}

func (s *SettingsService) SetDiscountsEnabled(ctx context.Context, enabled bool) (bool, error) {
	return s.store.SetBool(ctx, models.DiscountsEnabledKey, enabled)
}
