package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dchest/uniuri"
	"github.com/google/uuid"

	"github.com/Cheertaboi/referral-service/internal/apperr"
	"github.com/Cheertaboi/referral-service/internal/logging"
	"github.com/Cheertaboi/referral-service/internal/models"
	"github.com/Cheertaboi/referral-service/internal/repository"
)

const (
	referralCodeLen      = 8
	referralCodeAttempts = 5
	defaultPageSize      = 20
	maxPageSize          = 100
)

var referralCodeChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

func NewReferralCode() string {
	return uniuri.NewLenChars(referralCodeLen, referralCodeChars)
}

type CustomerService struct {
	customers    CustomerStore
	transactions TransactionStore
	registry     *Registry
	referrals    Redeemer
	log          logging.Logger
	newCode      func() string
	timeout      time.Duration
}

func NewCustomerService(
	customers CustomerStore,
	transactions TransactionStore,
	registry *Registry,
	referrals Redeemer,
	log logging.Logger,
) *CustomerService {
	return &CustomerService{
		customers:    customers,
		transactions: transactions,
		registry:     registry,
		referrals:    referrals,
		log:          log,
		newCode:      NewReferralCode,
		timeout:      defaultTimeout,
	}
}

func (s *CustomerService) WithTimeout(d time.Duration) *CustomerService {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Create registers a customer with a fresh referral code. If the input names
// a reference, the owner of that code is rewarded after the save.
func (s *CustomerService) Create(ctx context.Context, in models.CustomerInput) (*models.Customer, models.RedemptionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var c models.Customer
	applyProfile(&c, in)
	if err := validateCustomer(c); err != nil {
		return nil, models.RedemptionResult{}, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, models.RedemptionResult{}, err
	}

	c.ID = uuid.NewString()
	c.Price = in.Price
	c.FinalPrice = in.Price
	if in.Reference != nil {
		c.Reference = strings.TrimSpace(*in.Reference)
	}

	var err error
	for attempt := 0; attempt < referralCodeAttempts; attempt++ {
		c.MyReferralCode = s.newCode()
		err = s.customers.Create(ctx, &c)
		if !errors.Is(err, repository.ErrDuplicate) {
			break
		}
		s.log.Warnf("referral code collision on %q, retrying", c.MyReferralCode)
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, models.RedemptionResult{}, apperr.Conflict("could not assign a unique referral code")
	}
	if err != nil {
		return nil, models.RedemptionResult{}, fmt.Errorf("create customer: %w", err)
	}
	s.registry.Remember(ctx, &c)

	result := s.referrals.Redeem(ctx, c, c.Reference)
	return &c, result, nil
}

// Update edits a customer. finalPrice follows price (the customer never
// discounts themselves here) and discountRate is left alone. Only the first
// reference on file triggers a referral reward.
func (s *CustomerService) Update(ctx context.Context, id string, in models.CustomerInput) (*models.Customer, models.RedemptionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c, err := s.get(ctx, id)
	if err != nil {
		return nil, models.RedemptionResult{}, err
	}

	applyProfile(c, in)
	if err := validateCustomer(*c); err != nil {
		return nil, models.RedemptionResult{}, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, models.RedemptionResult{}, err
	}
	if in.Price != nil {
		c.Price = in.Price
		c.FinalPrice = in.Price
	}

	redeem := ""
	if in.Reference != nil {
		ref := strings.TrimSpace(*in.Reference)
		if ref != "" && c.Reference == "" && ref != c.MyReferralCode {
			c.Reference = ref
			redeem = ref
		}
	}

	if err := s.customers.Update(ctx, c); err != nil {
		return nil, models.RedemptionResult{}, fmt.Errorf("update customer: %w", err)
	}

	result := s.referrals.Redeem(ctx, *c, redeem)
	return c, result, nil
}

func (s *CustomerService) Get(ctx context.Context, id string) (*models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.get(ctx, id)
}

func (s *CustomerService) get(ctx context.Context, id string) (*models.Customer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.NotFound("customer %s not found", id)
	}
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	if c == nil {
		return nil, apperr.NotFound("customer %s not found", id)
	}
	return c, nil
}

// List pages through customers, newest first.
func (s *CustomerService) List(ctx context.Context, page, size int) (*models.CustomerPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = defaultPageSize
	}
	if page < 1 {
		return nil, apperr.Validation("invalid page")
	}
	if size < 1 || size > maxPageSize {
		return nil, apperr.Validation("size must be between 1 and %d", maxPageSize)
	}

	customers, total, err := s.customers.List(ctx, size, (page-1)*size)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	p := &models.CustomerPage{
		Count:   total,
		Page:    page,
		Size:    size,
		Results: customers,
	}
	if total > page*size {
		p.Next = fmt.Sprintf("/admin/customers?page=%d&size=%d", page+1, size)
	}
	if page > 1 {
		p.Previous = fmt.Sprintf("/admin/customers?page=%d&size=%d", page-1, size)
	}
	return p, nil
}

// Delete removes the customer for good. Ledger entries naming their code stay.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.customers.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if !ok {
		return apperr.NotFound("customer %s not found", id)
	}
	s.registry.Forget(ctx, c.MyReferralCode)
	s.log.Infof("customer %s deleted", id)
	return nil
}

// Referrals lists the ledger entries where the customer is the referrer.
func (s *CustomerService) Referrals(ctx context.Context, id string) ([]models.ReferralTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transactions.List(ctx, models.TransactionFilter{ReferrerCode: c.MyReferralCode})
}

func applyProfile(c *models.Customer, in models.CustomerInput) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&c.FirstName, in.FirstName)
	set(&c.LastName, in.LastName)
	set(&c.Company, in.Company)
	set(&c.Email, in.Email)
	set(&c.Phone, in.Phone)
	set(&c.Address, in.Address)
	set(&c.City, in.City)
	set(&c.Postcode, in.Postcode)
}

func validateCustomer(c models.Customer) error {
	if c.FirstName == "" || c.LastName == "" {
		return apperr.Validation("firstName and lastName are required")
	}
	if c.Email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return apperr.Validation("invalid email %q", c.Email)
	}
	return nil
}

func validatePrice(p *float64) error {
	if p != nil && *p < 0 {
		return apperr.Validation("price must not be negative")
	}
	return nil
}
