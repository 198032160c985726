package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"respa-server/internal/domain/purchase"

	"github.com/shopspring/decimal"
)

// PurchaseRepository MySQL実装のPurchaseRepository
type PurchaseRepository struct {
	db *DB
}

// NewPurchaseRepository 新しいPurchaseRepositoryを作成
func NewPurchaseRepository(db *DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

const purchaseColumns = `
	id, purchase_code, vat_percent, price_vat, product_name,
	purchase_process_started, purchase_process_success, purchase_process_failure,
	finished, status, ceepos_reference, payment_address`

// Create 購入を新規作成
func (r *PurchaseRepository) Create(ctx context.Context, p *purchase.Purchase) error {
	query := `
		INSERT INTO purchases (
			purchase_code, vat_percent, price_vat, product_name,
			purchase_process_started, purchase_process_success, purchase_process_failure,
			finished, status, ceepos_reference, payment_address
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query, purchaseArgs(p)...)
	if err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get purchase id: %w", err)
	}
	p.AssignID(id)
	return nil
}

// Save 購入を更新
func (r *PurchaseRepository) Save(ctx context.Context, p *purchase.Purchase) error {
	query := `
		UPDATE purchases SET
			purchase_code = ?, vat_percent = ?, price_vat = ?, product_name = ?,
			purchase_process_started = ?, purchase_process_success = ?, purchase_process_failure = ?,
			finished = ?, status = ?, ceepos_reference = ?, payment_address = ?
		WHERE id = ?
	`

	args := append(purchaseArgs(p), p.PurchaseID())
	result, err := r.db.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save purchase: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// MySQLは値が変わらない更新で0を返すため存在確認する
		if _, err := r.FindByID(ctx, p.PurchaseID()); err != nil {
			return err
		}
	}
	return nil
}

// FindByID 購入IDで購入を取得
func (r *PurchaseRepository) FindByID(ctx context.Context, purchaseID int64) (*purchase.Purchase, error) {
	query := `SELECT` + purchaseColumns + ` FROM purchases WHERE id = ?`
	return r.findOne(ctx, query, purchaseID)
}

// FindByIDAndReference 購入IDと決済参照番号で購入を取得
func (r *PurchaseRepository) FindByIDAndReference(ctx context.Context, purchaseID int64, reference string) (*purchase.Purchase, error) {
	query := `SELECT` + purchaseColumns + ` FROM purchases WHERE id = ? AND ceepos_reference = ?`
	return r.findOne(ctx, query, purchaseID, reference)
}

// FindByIDAndReferenceForUpdate 行ロック付きで購入を取得
func (r *PurchaseRepository) FindByIDAndReferenceForUpdate(ctx context.Context, purchaseID int64, reference string) (*purchase.Purchase, error) {
	query := `SELECT` + purchaseColumns + ` FROM purchases WHERE id = ? AND ceepos_reference = ? FOR UPDATE`
	return r.findOne(ctx, query, purchaseID, reference)
}

// FindByStatus 決済ステータスで購入を取得
func (r *PurchaseRepository) FindByStatus(ctx context.Context, status purchase.PaymentStatus) ([]*purchase.Purchase, error) {
	query := `SELECT` + purchaseColumns + ` FROM purchases WHERE status = ? ORDER BY id`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, status.Int())
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*purchase.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchases: %w", err)
	}
	return purchases, nil
}

func (r *PurchaseRepository) findOne(ctx context.Context, query string, args ...interface{}) (*purchase.Purchase, error) {
	p, err := scanPurchase(r.db.conn(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, purchase.ErrPurchaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPurchase(row rowScanner) (*purchase.Purchase, error) {
	var (
		id                       int64
		code                     string
		vatPercent               int
		priceVAT                 string
		productName              string
		started                  time.Time
		success, failure, finish sql.NullTime
		status                   sql.NullInt64
		reference, address       sql.NullString
	)

	err := row.Scan(
		&id, &code, &vatPercent, &priceVAT, &productName,
		&started, &success, &failure,
		&finish, &status, &reference, &address,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan purchase: %w", err)
	}

	price, err := decimal.NewFromString(priceVAT)
	if err != nil {
		return nil, fmt.Errorf("invalid price_vat %q: %w", priceVAT, err)
	}

	state := purchase.State{
		PurchaseID:      id,
		PurchaseCode:    code,
		VATPercent:      vatPercent,
		PriceVAT:        price,
		ProductName:     productName,
		ProcessStarted:  started,
		ProcessSuccess:  nullTimePtr(success),
		ProcessFailure:  nullTimePtr(failure),
		Finished:        nullTimePtr(finish),
		CeeposReference: reference.String,
		PaymentAddress:  address.String,
	}
	if status.Valid {
		s, err := purchase.NewPaymentStatus(int(status.Int64))
		if err != nil {
			return nil, err
		}
		state.Status = &s
	}

	return purchase.Restore(state), nil
}

func purchaseArgs(p *purchase.Purchase) []interface{} {
	var status sql.NullInt64
	if s := p.Status(); s != nil {
		status = sql.NullInt64{Int64: int64(s.Int()), Valid: true}
	}
	return []interface{}{
		p.PurchaseCode(),
		p.VATPercent(),
		p.PriceVAT().StringFixed(2),
		p.ProductName(),
		p.ProcessStarted(),
		timePtrValue(p.ProcessSuccess()),
		timePtrValue(p.ProcessFailure()),
		timePtrValue(p.Finished()),
		status,
		nullString(p.CeeposReference()),
		nullString(p.PaymentAddress()),
	}
}
