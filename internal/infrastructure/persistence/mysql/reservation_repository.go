package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"respa-server/internal/domain/reservation"
)

// ReservationRepository MySQL実装のReservationRepository
type ReservationRepository struct {
	db *DB
}

// NewReservationRepository 新しいReservationRepositoryを作成
func NewReservationRepository(db *DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `
	id, resource_id, ` + "`begin`, `end`" + `, comments, user_id, state, approver_id, purchase_id,
	access_code, event_subject, event_description, number_of_participants, participants, host_name,
	reserver_name, reserver_id, reserver_email_address, reserver_phone_number,
	reserver_address_street, reserver_address_zip, reserver_address_city, company,
	billing_address_street, billing_address_zip, billing_address_city, origin_id,
	created_at, updated_at`

// Create 予約を新規作成
func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	query := `
		INSERT INTO reservations (
			resource_id, ` + "`begin`, `end`" + `, comments, user_id, state, approver_id, purchase_id,
			access_code, event_subject, event_description, number_of_participants, participants, host_name,
			reserver_name, reserver_id, reserver_email_address, reserver_phone_number,
			reserver_address_street, reserver_address_zip, reserver_address_city, company,
			billing_address_street, billing_address_zip, billing_address_city, origin_id,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query, reservationArgs(res)...)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get reservation id: %w", err)
	}
	res.AssignID(id)
	return nil
}

// Save 予約を更新
func (r *ReservationRepository) Save(ctx context.Context, res *reservation.Reservation) error {
	query := `
		UPDATE reservations SET
			resource_id = ?, ` + "`begin` = ?, `end` = ?" + `, comments = ?, user_id = ?, state = ?,
			approver_id = ?, purchase_id = ?, access_code = ?, event_subject = ?, event_description = ?,
			number_of_participants = ?, participants = ?, host_name = ?,
			reserver_name = ?, reserver_id = ?, reserver_email_address = ?, reserver_phone_number = ?,
			reserver_address_street = ?, reserver_address_zip = ?, reserver_address_city = ?, company = ?,
			billing_address_street = ?, billing_address_zip = ?, billing_address_city = ?, origin_id = ?,
			created_at = ?, updated_at = ?
		WHERE id = ?
	`

	args := append(reservationArgs(res), res.ReservationID())
	if _, err := r.db.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	return nil
}

// FindByID 予約IDで予約を取得
func (r *ReservationRepository) FindByID(ctx context.Context, reservationID int64) (*reservation.Reservation, error) {
	query := `SELECT` + reservationColumns + ` FROM reservations WHERE id = ?`
	return r.findOne(ctx, query, reservationID)
}

// FindByPurchaseID 購入IDで予約を取得
func (r *ReservationRepository) FindByPurchaseID(ctx context.Context, purchaseID int64) (*reservation.Reservation, error) {
	query := `SELECT` + reservationColumns + ` FROM reservations WHERE purchase_id = ?`
	return r.findOne(ctx, query, purchaseID)
}

// FindOverlapping 期間が重なる有効な予約を取得
func (r *ReservationRepository) FindOverlapping(ctx context.Context, resourceID int64, begin, end time.Time, excludeID int64) ([]*reservation.Reservation, error) {
	query := `SELECT` + reservationColumns + `
		FROM reservations
		WHERE resource_id = ?
			AND ` + "`begin` < ? AND `end` > ?" + `
			AND state NOT IN (?, ?)
			AND id <> ?
		ORDER BY ` + "`begin`"

	rows, err := r.db.conn(ctx).QueryContext(ctx, query,
		resourceID, end, begin,
		reservation.StateCancelled.String(), reservation.StateDenied.String(),
		excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reservations: %w", err)
	}
	return reservations, nil
}

// Delete 予約を削除
func (r *ReservationRepository) Delete(ctx context.Context, reservationID int64) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, reservationID)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) findOne(ctx context.Context, query string, args ...interface{}) (*reservation.Reservation, error) {
	res, err := scanReservation(r.db.conn(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, reservation.ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func scanReservation(row rowScanner) (*reservation.Reservation, error) {
	var (
		s                    reservation.Snapshot
		state                string
		userID, approverID   sql.NullString
		purchaseID           sql.NullInt64
		numberOfParticipants sql.NullInt64
	)

	err := row.Scan(
		&s.ReservationID, &s.ResourceID, &s.Begin, &s.End, &s.Comments, &userID, &state, &approverID, &purchaseID,
		&s.AccessCode, &s.Event.Subject, &s.Event.Description, &numberOfParticipants, &s.Event.Participants, &s.Event.HostName,
		&s.Reserver.Name, &s.Reserver.ID, &s.Reserver.EmailAddress, &s.Reserver.PhoneNumber,
		&s.Reserver.AddressStreet, &s.Reserver.AddressZip, &s.Reserver.AddressCity, &s.Reserver.Company,
		&s.Reserver.BillingAddressStreet, &s.Reserver.BillingAddressZip, &s.Reserver.BillingAddressCity, &s.OriginID,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan reservation: %w", err)
	}

	st, err := reservation.NewState(state)
	if err != nil {
		return nil, err
	}
	s.State = st
	s.UserID = nullStringPtr(userID)
	s.ApproverID = nullStringPtr(approverID)
	s.PurchaseID = nullInt64Ptr(purchaseID)
	if numberOfParticipants.Valid {
		n := int(numberOfParticipants.Int64)
		s.Event.NumberOfParticipants = &n
	}

	return reservation.Restore(s), nil
}

func reservationArgs(res *reservation.Reservation) []interface{} {
	ev := res.Event()
	rs := res.Reserver()

	var participants sql.NullInt64
	if ev.NumberOfParticipants != nil {
		participants = sql.NullInt64{Int64: int64(*ev.NumberOfParticipants), Valid: true}
	}

	return []interface{}{
		res.ResourceID(), res.Begin(), res.End(), res.Comments(),
		stringPtrValue(res.UserID()), res.State().String(), stringPtrValue(res.ApproverID()), int64PtrValue(res.PurchaseID()),
		res.AccessCode(), ev.Subject, ev.Description, participants, ev.Participants, ev.HostName,
		rs.Name, rs.ID, rs.EmailAddress, rs.PhoneNumber,
		rs.AddressStreet, rs.AddressZip, rs.AddressCity, rs.Company,
		rs.BillingAddressStreet, rs.BillingAddressZip, rs.BillingAddressCity, res.OriginID(),
		res.CreatedAt(), res.UpdatedAt(),
	}
}
