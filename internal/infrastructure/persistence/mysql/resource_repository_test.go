package mysql

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"respa-server/internal/domain/resource"
)

func TestResourceRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewResourceRepository(&DB{DB: db})
	columns := []string{
		"id", "name", "unit", "owner_email",
		"need_manual_confirmation", "ceepos_payment_required", "product_code",
		"min_price_per_hour", "min_period_seconds", "access_code_type",
		"responsible_contact_info", "reservation_confirmed_notification_extra",
	}

	tests := []struct {
		name      string
		setupMock func()
		wantError error
	}{
		{
			name: "正常系: リソースが見つかる",
			setupMock: func() {
				rows := sqlmock.NewRows(columns).
					AddRow(int64(1), "Sauna", "Lappeenranta", "owner@example.com", true, true, "P1", "12.50", 1800, "pin4", "", "")
				mock.ExpectQuery(`SELECT (.+) FROM resources r`).
					WithArgs(int64(1)).
					WillReturnRows(rows)
			},
		},
		{
			name: "異常系: リソースが見つからない",
			setupMock: func() {
				mock.ExpectQuery(`SELECT (.+) FROM resources r`).
					WithArgs(int64(1)).
					WillReturnError(sql.ErrNoRows)
			},
			wantError: resource.ErrResourceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			got, err := repo.FindByID(context.Background(), 1)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Sauna", got.Name())
				assert.Equal(t, "Lappeenranta", got.UnitName())
				assert.True(t, got.NeedManualConfirmation())
				assert.True(t, got.RequiresPayment())
				assert.True(t, decimal.RequireFromString("12.5").Equal(got.MinPricePerHour()))
				assert.Equal(t, 30*time.Minute, got.MinPeriod())
				assert.Equal(t, resource.AccessCodeTypePIN4, got.AccessCodeType())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestResourceRepository_LockByID(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantError error
	}{
		{
			name: "正常系: トランザクション内で行をロック",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT id FROM resources WHERE id = \? FOR UPDATE`).
					WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
				mock.ExpectCommit()
			},
		},
		{
			name: "異常系: リソースが見つからない",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT id FROM resources WHERE id = \? FOR UPDATE`).
					WithArgs(int64(1)).
					WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantError: resource.ErrResourceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			conn := &DB{DB: db}
			repo := NewResourceRepository(conn)
			tt.setupMock(mock)

			err = NewTransactionManager(conn).WithTransaction(context.Background(), func(ctx context.Context) error {
				return repo.LockByID(ctx, 1)
			})
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
