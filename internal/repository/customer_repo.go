package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Cheertaboi/referral-service/internal/models"
	"github.com/Cheertaboi/referral-service/pkg/db"
)

// ErrDuplicate is returned when an insert hits a unique index.
var ErrDuplicate = errors.New("duplicate key")

type CustomerRepo struct {
	db *sql.DB
}

func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

const customerColumns = `
	id, first_name, last_name, company, email, phone, address, city, postcode,
	price, discount_rate, final_price, reference, my_referral_code,
	referral_count, total_earnings, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var (
		c            models.Customer
		price        sql.NullFloat64
		discountRate sql.NullInt64
		finalPrice   sql.NullFloat64
	)

	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Company,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.City,
		&c.Postcode,
		&price,
		&discountRate,
		&finalPrice,
		&c.Reference,
		&c.MyReferralCode,
		&c.ReferralCount,
		&c.TotalEarnings,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Price = floatPtr(price)
	c.DiscountRate = intPtr(discountRate)
	c.FinalPrice = floatPtr(finalPrice)
	return &c, nil
}

func (r *CustomerRepo) getOne(ctx context.Context, query string, arg any) (*models.Customer, error) {
	c, err := scanCustomer(conn(ctx, r.db).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// GetByID returns nil, nil when no customer has the id.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

// GetByIDForUpdate locks the row until the surrounding transaction ends.
func (r *CustomerRepo) GetByIDForUpdate(ctx context.Context, id string) (*models.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1 FOR UPDATE`, id)
}

func (r *CustomerRepo) GetByReferralCode(ctx context.Context, code string) (*models.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE my_referral_code = $1`, code)
}

func (r *CustomerRepo) Create(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers
		(id, first_name, last_name, company, email, phone, address, city, postcode,
		 price, discount_rate, final_price, reference, my_referral_code,
		 referral_count, total_earnings, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,NOW(),NOW())
		RETURNING created_at, updated_at
	`
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		c.ID,
		c.FirstName,
		c.LastName,
		c.Company,
		c.Email,
		c.Phone,
		c.Address,
		c.City,
		c.Postcode,
		nullFloat(c.Price),
		nullInt(c.DiscountRate),
		nullFloat(c.FinalPrice),
		c.Reference,
		c.MyReferralCode,
		c.ReferralCount,
		c.TotalEarnings,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("insert customer: %w", ErrDuplicate)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// Update writes the admin-editable fields. Referral bookkeeping columns are
// owned by ApplyReferral and UpdatePricing.
func (r *CustomerRepo) Update(ctx context.Context, c *models.Customer) error {
	query := `
		UPDATE customers
		SET first_name = $2, last_name = $3, company = $4, email = $5, phone = $6,
		    address = $7, city = $8, postcode = $9, price = $10, final_price = $11,
		    reference = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		c.ID,
		c.FirstName,
		c.LastName,
		c.Company,
		c.Email,
		c.Phone,
		c.Address,
		c.City,
		c.Postcode,
		nullFloat(c.Price),
		nullFloat(c.FinalPrice),
		c.Reference,
	).Scan(&c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// ApplyReferral stores the referrer side of a redemption.
func (r *CustomerRepo) ApplyReferral(ctx context.Context, id string, referralCount, discountRate int, finalPrice, totalEarnings float64) error {
	query := `
		UPDATE customers
		SET referral_count = $2, discount_rate = $3, final_price = $4,
		    total_earnings = $5, updated_at = NOW()
		WHERE id = $1
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, id, referralCount, discountRate, finalPrice, totalEarnings)
	if err != nil {
		return fmt.Errorf("apply referral: %w", err)
	}
	return nil
}

func (r *CustomerRepo) UpdatePricing(ctx context.Context, id string, discountRate int, finalPrice, totalEarnings float64) error {
	query := `
		UPDATE customers
		SET discount_rate = $2, final_price = $3, total_earnings = $4, updated_at = NOW()
		WHERE id = $1
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, id, discountRate, finalPrice, totalEarnings)
	if err != nil {
		return fmt.Errorf("update pricing: %w", err)
	}
	return nil
}

func (r *CustomerRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete customer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns one page, newest first, and the total row count.
func (r *CustomerRepo) List(ctx context.Context, limit, offset int) ([]models.Customer, int, error) {
	q := conn(ctx, r.db)

	var total int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, *c)
	}
	return customers, total, rows.Err()
}
