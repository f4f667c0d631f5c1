package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Cheertaboi/referral-service/internal/apperr"
	"github.com/Cheertaboi/referral-service/internal/discount"
	"github.com/Cheertaboi/referral-service/internal/logging"
	"github.com/Cheertaboi/referral-service/internal/mail"
	"github.com/Cheertaboi/referral-service/internal/models"
)

const defaultTimeout = 8 * time.Second

// errSkipReward aborts a redemption transaction without it being an error.
var errSkipReward = errors.New("referral reward skipped")

type ReferralService struct {
	tx           TxManager
	customers    CustomerStore
	transactions TransactionStore
	registry     *Registry
	settings     DiscountToggle
	mailer       mail.Mailer
	log          logging.Logger
	timeout      time.Duration
}

func NewReferralService(
	tx TxManager,
	customers CustomerStore,
	transactions TransactionStore,
	registry *Registry,
	settings DiscountToggle,
	mailer mail.Mailer,
	log logging.Logger,
) *ReferralService {
	return &ReferralService{
		tx:           tx,
		customers:    customers,
		transactions: transactions,
		registry:     registry,
		settings:     settings,
		mailer:       mailer,
		log:          log,
		timeout:      defaultTimeout,
	}
}

// WithTimeout sets the per-call deadline.
func (s *ReferralService) WithTimeout(d time.Duration) *ReferralService {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// ValidateReferral previews what the owner of code would get if the code
// were redeemed now. Nothing is written.
func (s *ReferralService) ValidateReferral(ctx context.Context, req models.ValidationRequest) (*models.ValidationResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	code := strings.TrimSpace(req.ReferralCode)
	if code == "" {
		return nil, apperr.Validation("referralCode is required")
	}

	referrer, err := s.registry.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	return &models.ValidationResponse{
		Referrer: models.ReferrerSummary{
			Name:          referrer.FullName(),
			ReferralCount: referrer.ReferralCount,
		},
		Discount: discount.Compute(req.BasePrice, referrer.ReferralCount),
	}, nil
}

// Redeem rewards the owner of reference for bringing in redeemer. The rate
// comes from the referrer's count before this redemption; the redeemer pays
// full price. Failures are logged and reported as not applied: the
// redeemer's own save has already happened and must not be undone.
func (s *ReferralService) Redeem(ctx context.Context, redeemer models.Customer, reference string) models.RedemptionResult {
	reference = strings.TrimSpace(reference)
	if reference == "" || redeemer.Price == nil {
		return models.RedemptionResult{}
	}
	if reference == redeemer.MyReferralCode {
		s.log.Warnf("customer %s tried to redeem their own referral code", redeemer.ID)
		return models.RedemptionResult{}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var reward *models.ReferrerReward
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		found, err := s.registry.Lookup(ctx, reference)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return errSkipReward
			}
			return err
		}

		referrer, err := s.customers.GetByIDForUpdate(ctx, found.ID)
		if err != nil {
			return fmt.Errorf("lock referrer: %w", err)
		}
		if referrer == nil || referrer.Price == nil {
			return errSkipReward
		}

		d := discount.Compute(*referrer.Price, referrer.ReferralCount)
		err = s.customers.ApplyReferral(ctx, referrer.ID, referrer.ReferralCount+1, d.Rate, d.FinalPrice, d.Amount)
		if err != nil {
			return err
		}

		price := *redeemer.Price
		entry := &models.ReferralTransaction{
			ID:            uuid.NewString(),
			ReferrerCode:  reference,
			NewCustomerID: redeemer.ID,
			DiscountRate:  d.Rate,
			OriginalPrice: price,
			FinalPrice:    price,
			ReferralLevel: d.ReferralLevel,
		}
		if err := s.transactions.Create(ctx, entry); err != nil {
			return err
		}

		reward = &models.ReferrerReward{
			Rate: d.Rate,
			Message: fmt.Sprintf("%s now gets %d%% off (level %d, %d referrals)",
				referrer.FullName(), d.Rate, d.ReferralLevel, referrer.ReferralCount+1),
		}
		return nil
	})

	switch {
	case errors.Is(err, errSkipReward):
		s.log.Infof("referral code %q gave no reward for customer %s", reference, redeemer.ID)
		return models.RedemptionResult{}
	case err != nil:
		s.log.Errorf("referral bookkeeping for customer %s (code %q) failed: %v", redeemer.ID, reference, err)
		return models.RedemptionResult{}
	}

	s.log.Infof("referral code %q redeemed by customer %s: %s", reference, redeemer.ID, reward.Message)
	return models.RedemptionResult{ReferralApplied: true, ReferrerReward: reward}
}

// SendDiscountEmail confirms a referrer's new discount by email, at most once
// per ledger entry. The whole sequence runs in one transaction: if the mail
// cannot be sent nothing is stored and the call can be retried.
func (s *ReferralService) SendDiscountEmail(ctx context.Context, req models.SendEmailRequest) (*models.SendEmailResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	choice := req.DiscountRate
	if !choice.Valid() {
		return nil, apperr.Validation("invalid discountRate %q: expected 3, 6, 9 or \"+3\"", choice.String())
	}
	id := strings.TrimSpace(req.TransactionID)
	if id == "" {
		return nil, apperr.Validation("transactionId is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.NotFound("transaction %s not found", id)
	}

	enabled, err := s.settings.DiscountsEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("read discount setting: %w", err)
	}
	if !enabled {
		return nil, apperr.Conflict("discounts are disabled")
	}

	var result *models.SendEmailResult
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		entry, err := s.transactions.GetByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("load transaction: %w", err)
		}
		if entry == nil {
			return apperr.NotFound("transaction %s not found", id)
		}
		if entry.EmailSent {
			return apperr.Conflict("discount email already sent for transaction %s", id)
		}

		found, err := s.registry.Lookup(ctx, entry.ReferrerCode)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return apperr.NotFound("referrer for code %q not found", entry.ReferrerCode)
			}
			return err
		}
		referrer, err := s.customers.GetByIDForUpdate(ctx, found.ID)
		if err != nil {
			return fmt.Errorf("lock referrer: %w", err)
		}
		if referrer == nil {
			return apperr.NotFound("referrer for code %q not found", entry.ReferrerCode)
		}
		if strings.TrimSpace(referrer.Email) == "" {
			return apperr.NotFound("referrer %s has no email address", referrer.ID)
		}

		var (
			msg        mail.Message
			storedRate int
		)
		if choice.Bonus {
			msg, err = s.applyBonus(ctx, referrer)
			storedRate = discount.BonusRate
		} else {
			msg, err = s.applyTier(ctx, referrer, choice.Rate)
			storedRate = choice.Rate
		}
		if err != nil {
			return err
		}

		// Conditional update first so a concurrent sender loses before any mail goes out.
		ok, err := s.transactions.MarkEmailSent(ctx, entry.ID, storedRate, choice.Bonus)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("discount email already sent for transaction %s", id)
		}

		if err := s.mailer.Send(ctx, msg); err != nil {
			return fmt.Errorf("send discount email: %w", err)
		}

		result = &models.SendEmailResult{
			TransactionID: entry.ID,
			EmailSent:     true,
			DiscountRate:  choice,
			ReferrerEmail: referrer.Email,
			IsBonus:       choice.Bonus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("discount email (%s) sent to %s for transaction %s", choice, result.ReferrerEmail, result.TransactionID)
	return result, nil
}

func (s *ReferralService) applyTier(ctx context.Context, referrer *models.Customer, rate int) (mail.Message, error) {
	if referrer.Price == nil {
		return mail.Message{}, apperr.Validation("referrer %s has no price on file", referrer.ID)
	}
	price := *referrer.Price
	final := discount.PriceAt(price, rate)
	previous := discount.PriceAt(price, rate-discount.RateStep)

	if err := s.customers.UpdatePricing(ctx, referrer.ID, rate, final, discount.Saved(price, final)); err != nil {
		return mail.Message{}, err
	}

	return mail.RenderDiscount(mail.DiscountEmail{
		To:            referrer.Email,
		Name:          referrer.FullName(),
		Rate:          rate,
		Level:         discount.LevelFor(rate),
		OriginalPrice: price,
		PreviousPrice: previous,
		FinalPrice:    final,
		SavedNow:      discount.Saved(previous, final),
	})
}

// applyBonus takes 3% off the referrer's current final price. Nothing records
// that a bonus was already granted; eligibility is only the referral count.
func (s *ReferralService) applyBonus(ctx context.Context, referrer *models.Customer) (mail.Message, error) {
	if referrer.ReferralCount < discount.BonusEligibleCount {
		return mail.Message{}, apperr.Validation("bonus requires at least %d referrals, referrer has %d",
			discount.BonusEligibleCount, referrer.ReferralCount)
	}

	var current float64
	switch {
	case referrer.FinalPrice != nil:
		current = *referrer.FinalPrice
	case referrer.Price != nil:
		current = discount.PriceAt(*referrer.Price, discount.MaxRate)
	default:
		return mail.Message{}, apperr.Validation("referrer %s has no price on file", referrer.ID)
	}

	b := discount.Bonus(current)
	earnings := referrer.TotalEarnings + b.Amount
	if referrer.Price != nil {
		earnings = discount.Saved(*referrer.Price, b.FinalPrice)
	}

	if err := s.customers.UpdatePricing(ctx, referrer.ID, discount.MaxRate, b.FinalPrice, earnings); err != nil {
		return mail.Message{}, err
	}

	return mail.RenderBonus(mail.BonusEmail{
		To:            referrer.Email,
		Name:          referrer.FullName(),
		PreviousPrice: b.PreviousPrice,
		BonusAmount:   b.Amount,
		FinalPrice:    b.FinalPrice,
	})
}

// ListTransactions returns ledger entries, newest first.
func (s *ReferralService) ListTransactions(ctx context.Context, f models.TransactionFilter) ([]models.ReferralTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 500
	}
	return s.transactions.List(ctx, f)
}
