package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Cheertaboi/referral-service/internal/cache"
	"github.com/Cheertaboi/referral-service/internal/logging"
	"github.com/Cheertaboi/referral-service/internal/mail"
	"github.com/Cheertaboi/referral-service/internal/models"
	"github.com/Cheertaboi/referral-service/internal/repository"
)

// memDB is an in-memory stand-in for Postgres. WithinTx snapshots all tables
// and restores them when fn fails, which is enough to test rollback paths.
type memDB struct {
	mu        sync.Mutex
	customers map[string]models.Customer
	txs       map[string]models.ReferralTransaction
	settings  map[string]bool

	failApplyReferral bool
	failCreateTx      bool
	seq               int
}

func newMemDB() *memDB {
	return &memDB{
		customers: map[string]models.Customer{},
		txs:       map[string]models.ReferralTransaction{},
		settings:  map[string]bool{},
	}
}

func (m *memDB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	customers := make(map[string]models.Customer, len(m.customers))
	for k, v := range m.customers {
		customers[k] = v
	}
	txs := make(map[string]models.ReferralTransaction, len(m.txs))
	for k, v := range m.txs {
		txs[k] = v
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.customers = customers
		m.txs = txs
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memDB) tick() time.Time {
	m.seq++
	return time.Date(2026, 1, 1, 0, 0, m.seq, 0, time.UTC)
}

type memCustomers struct{ *memDB }

func (m memCustomers) GetByID(_ context.Context, id string) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m memCustomers) GetByIDForUpdate(ctx context.Context, id string) (*models.Customer, error) {
	return m.GetByID(ctx, id)
}

func (m memCustomers) GetByReferralCode(_ context.Context, code string) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.MyReferralCode == code {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (m memCustomers) Create(_ context.Context, c *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.customers {
		if existing.MyReferralCode == c.MyReferralCode {
			return repository.ErrDuplicate
		}
	}
	c.CreatedAt = m.tick()
	c.UpdatedAt = c.CreatedAt
	m.customers[c.ID] = *c
	return nil
}

func (m memCustomers) Update(_ context.Context, c *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.customers[c.ID]
	if !ok {
		return errors.New("no such customer")
	}
	existing.FirstName, existing.LastName, existing.Company = c.FirstName, c.LastName, c.Company
	existing.Email, existing.Phone = c.Email, c.Phone
	existing.Address, existing.City, existing.Postcode = c.Address, c.City, c.Postcode
	existing.Price, existing.FinalPrice, existing.Reference = c.Price, c.FinalPrice, c.Reference
	existing.UpdatedAt = m.tick()
	m.customers[c.ID] = existing
	return nil
}

func (m memCustomers) ApplyReferral(_ context.Context, id string, count, rate int, final, earnings float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failApplyReferral {
		return errors.New("connection reset")
	}
	c := m.customers[id]
	c.ReferralCount = count
	c.DiscountRate = models.Int(rate)
	c.FinalPrice = models.Float(final)
	c.TotalEarnings = earnings
	m.customers[id] = c
	return nil
}

func (m memCustomers) UpdatePricing(_ context.Context, id string, rate int, final, earnings float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.customers[id]
	c.DiscountRate = models.Int(rate)
	c.FinalPrice = models.Float(final)
	c.TotalEarnings = earnings
	m.customers[id] = c
	return nil
}

func (m memCustomers) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[id]; !ok {
		return false, nil
	}
	delete(m.customers, id)
	return true, nil
}

func (m memCustomers) List(_ context.Context, limit, offset int) ([]models.Customer, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]models.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return []models.Customer{}, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

type memTransactions struct{ *memDB }

func (m memTransactions) Create(_ context.Context, t *models.ReferralTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateTx {
		return errors.New("disk full")
	}
	t.CreatedAt = m.tick()
	m.txs[t.ID] = *t
	return nil
}

func (m memTransactions) GetByIDForUpdate(_ context.Context, id string) (*models.ReferralTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.txs[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m memTransactions) MarkEmailSent(_ context.Context, id string, rate int, isBonus bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.txs[id]
	if !ok || t.EmailSent {
		return false, nil
	}
	t.EmailSent = true
	t.DiscountRate = rate
	t.IsBonus = isBonus
	m.txs[id] = t
	return true, nil
}

func (m memTransactions) List(_ context.Context, f models.TransactionFilter) ([]models.ReferralTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ReferralTransaction{}
	for _, t := range m.txs {
		if f.ReferrerCode != "" && t.ReferrerCode != f.ReferrerCode {
			continue
		}
		if f.PendingOnly && t.EmailSent {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

type memSettings struct{ *memDB }

func (m memSettings) GetOrCreateBool(_ context.Context, key string, def bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.settings[key]
	if !ok {
		m.settings[key] = def
		return def, nil
	}
	return v, nil
}

func (m memSettings) SetBool(_ context.Context, key string, value bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return value, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type harness struct {
	db        *memDB
	mailer    *fakeMailer
	codes     *cache.MemoryCodeCache
	registry  *Registry
	settings  *SettingsService
	referrals *ReferralService
	customers *CustomerService
}

func newHarness() *harness {
	db := newMemDB()
	h := &harness{
		db:     db,
		mailer: &fakeMailer{},
		codes:  cache.NewMemoryCodeCache(),
	}
	h.registry = NewRegistry(memCustomers{db}, h.codes)
	h.settings = NewSettingsService(memSettings{db})
	h.referrals = NewReferralService(db, memCustomers{db}, memTransactions{db}, h.registry, h.settings, h.mailer, logging.Nop())
	h.customers = NewCustomerService(memCustomers{db}, memTransactions{db}, h.registry, h.referrals, logging.Nop())
	return h
}

// seed stores a customer directly, bypassing the service.
func (h *harness) seed(c models.Customer) models.Customer {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = h.db.tick()
	}
	h.db.customers[c.ID] = c
	return c
}

func (h *harness) customer(id string) models.Customer {
	h.db.mu.Lock()
	defer h.db.mu.Unlock()
	return h.db.customers[id]
}

func (h *harness) transactions() []models.ReferralTransaction {
	out, _ := memTransactions{h.db}.List(context.Background(), models.TransactionFilter{})
	return out
}
