package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Cheertaboi/referral-service/internal/models"
)

type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

const transactionColumns = `
	id, referrer_code, new_customer_id, discount_rate, original_price,
	final_price, referral_level, email_sent, is_bonus, created_at
`

func scanTransaction(row rowScanner) (*models.ReferralTransaction, error) {
	var t models.ReferralTransaction
	err := row.Scan(
		&t.ID,
		&t.ReferrerCode,
		&t.NewCustomerID,
		&t.DiscountRate,
		&t.OriginalPrice,
		&t.FinalPrice,
		&t.ReferralLevel,
		&t.EmailSent,
		&t.IsBonus,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepo) Create(ctx context.Context, t *models.ReferralTransaction) error {
	query := `
		INSERT INTO referral_transactions
		(id, referrer_code, new_customer_id, discount_rate, original_price,
		 final_price, referral_level, email_sent, is_bonus, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
		RETURNING created_at
	`
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		t.ID,
		t.ReferrerCode,
		t.NewCustomerID,
		t.DiscountRate,
		t.OriginalPrice,
		t.FinalPrice,
		t.ReferralLevel,
		t.EmailSent,
		t.IsBonus,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert referral transaction: %w", err)
	}
	return nil
}

// GetByIDForUpdate returns nil, nil when absent and locks the row otherwise.
func (r *TransactionRepo) GetByIDForUpdate(ctx context.Context, id string) (*models.ReferralTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM referral_transactions WHERE id = $1 FOR UPDATE`
	t, err := scanTransaction(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// MarkEmailSent flips email_sent only if it is still false. It reports false
// when another caller got there first.
func (r *TransactionRepo) MarkEmailSent(ctx context.Context, id string, discountRate int, isBonus bool) (bool, error) {
	query := `
		UPDATE referral_transactions
		SET email_sent = TRUE, discount_rate = $2, is_bonus = $3
		WHERE id = $1 AND email_sent = FALSE
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, id, discountRate, isBonus)
	if err != nil {
		return false, fmt.Errorf("mark email sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *TransactionRepo) List(ctx context.Context, f models.TransactionFilter) ([]models.ReferralTransaction, error) {
	var (
		where []string
		args  []any
	)
	if f.ReferrerCode != "" {
		args = append(args, f.ReferrerCode)
		where = append(where, fmt.Sprintf("referrer_code = $%d", len(args)))
	}
	if f.PendingOnly {
		where = append(where, "email_sent = FALSE")
	}

	query := `SELECT ` + transactionColumns + ` FROM referral_transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list referral transactions: %w", err)
	}
	defer rows.Close()

	txs := []models.ReferralTransaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}
