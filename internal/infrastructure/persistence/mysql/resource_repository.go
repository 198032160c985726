package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"respa-server/internal/domain/resource"

	"github.com/shopspring/decimal"
)

// ResourceRepository MySQL実装のResourceRepository
type ResourceRepository struct {
	db *DB
}

// NewResourceRepository 新しいResourceRepositoryを作成
func NewResourceRepository(db *DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// FindByID リソースIDでリソースを取得
func (r *ResourceRepository) FindByID(ctx context.Context, resourceID int64) (*resource.Resource, error) {
	query := `
		SELECT
			r.id, r.name, COALESCE(u.name, ''), r.owner_email,
			r.need_manual_confirmation, r.ceepos_payment_required, r.product_code,
			r.min_price_per_hour, r.min_period_seconds, r.access_code_type,
			r.responsible_contact_info, r.reservation_confirmed_notification_extra
		FROM resources r
		LEFT JOIN units u ON u.id = r.unit_id
		WHERE r.id = ?
	`

	var (
		p              resource.Params
		minPrice       string
		minPeriod      int64
		accessCodeType string
	)

	err := r.db.conn(ctx).QueryRowContext(ctx, query, resourceID).Scan(
		&p.ResourceID, &p.Name, &p.UnitName, &p.OwnerEmail,
		&p.NeedManualConfirmation, &p.CeeposPaymentRequired, &p.ProductCode,
		&minPrice, &minPeriod, &accessCodeType,
		&p.ResponsibleContactInfo, &p.ConfirmedNotificationExtra,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, resource.ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find resource: %w", err)
	}

	p.MinPricePerHour, err = decimal.NewFromString(minPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid min_price_per_hour %q: %w", minPrice, err)
	}
	p.MinPeriod = time.Duration(minPeriod) * time.Second
	p.AccessCodeType, err = resource.NewAccessCodeType(accessCodeType)
	if err != nil {
		return nil, err
	}

	return resource.NewResource(p)
}

// LockByID リソース行をSELECT ... FOR UPDATEでロックする
func (r *ResourceRepository) LockByID(ctx context.Context, resourceID int64) error {
	var id int64
	err := r.db.conn(ctx).QueryRowContext(ctx, `SELECT id FROM resources WHERE id = ? FOR UPDATE`, resourceID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return resource.ErrResourceNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock resource: %w", err)
	}
	return nil
}
