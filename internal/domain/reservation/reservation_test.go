package reservation

import (
	"testing"
	"time"

	"respa-server/internal/domain/resource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestNewReservation(t *testing.T) {
	begin := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("正常系: 既定の状態はconfirmed", func(t *testing.T) {
		r, err := NewReservation(1, begin, begin.Add(time.Hour), strPtr("u1"), "")
		require.NoError(t, err)
		assert.Equal(t, StateConfirmed, r.State())
		assert.Equal(t, time.Hour, r.Duration())
		assert.False(t, r.HasPurchase())
	})

	t.Run("異常系: 終了が開始以前", func(t *testing.T) {
		_, err := NewReservation(1, begin, begin, nil, StateRequested)
		assert.ErrorIs(t, err, ErrEndBeforeBegin)
	})

	t.Run("異常系: 不明な状態", func(t *testing.T) {
		_, err := NewReservation(1, begin, begin.Add(time.Hour), nil, State("archived"))
		assert.ErrorIs(t, err, ErrInvalidReservation)
	})
}

func TestReservation_SetState(t *testing.T) {
	begin := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	approver := strPtr("admin")

	tests := []struct {
		name         string
		from         State
		to           State
		wantChanged  bool
		wantEvents   []EventType
		wantApprover *string
		wantErr      error
	}{
		{
			name:         "正常系: 承認待ちから確定",
			from:         StateRequested,
			to:           StateConfirmed,
			wantChanged:  true,
			wantEvents:   []EventType{EventReservationConfirmed},
			wantApprover: approver,
		},
		{
			name:        "正常系: 確定からキャンセルで承認者を消去",
			from:        StateConfirmed,
			to:          StateCancelled,
			wantChanged: true,
		},
		{
			name:       "正常系: 確定のまま更新",
			from:       StateConfirmed,
			to:         StateConfirmed,
			wantEvents: []EventType{EventReservationModified},
		},
		{
			name: "正常系: 承認待ちのまま",
			from: StateRequested,
			to:   StateRequested,
		},
		{
			name:    "異常系: 遷移できない状態",
			from:    StateRequested,
			to:      StatePending,
			wantErr: ErrInvalidStateTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Restore(Snapshot{
				ReservationID: 1,
				ResourceID:    1,
				Begin:         begin,
				End:           begin.Add(time.Hour),
				State:         tt.from,
				ApproverID:    strPtr("previous"),
			})

			changed, events, err := r.SetState(tt.to, approver)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, r.State())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantEvents, events)
			assert.Equal(t, tt.to, r.State())
			if tt.wantChanged {
				assert.Equal(t, tt.wantApprover, r.ApproverID())
			}
		})
	}
}

func TestReservation_Validate(t *testing.T) {
	begin := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rsc := resource.MustNewResource(resource.Params{
		ResourceID:     1,
		Name:           "Sauna",
		MinPeriod:      time.Hour,
		AccessCodeType: resource.AccessCodeTypePIN4,
	})

	r := MustNewReservation(1, begin, begin.Add(2*time.Hour), nil, StateConfirmed)
	assert.NoError(t, r.Validate(rsc))

	short := MustNewReservation(1, begin, begin.Add(30*time.Minute), nil, StateConfirmed)
	err := short.Validate(rsc)
	assert.ErrorIs(t, err, ErrTooShort)
	assert.Contains(t, err.Error(), "1 hour")

	r.SetAccessCode("12")
	assert.ErrorIs(t, r.Validate(rsc), resource.ErrInvalidAccessCode)
}

func TestReservation_PrepareAccessCode(t *testing.T) {
	begin := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	withCodes := resource.MustNewResource(resource.Params{Name: "Sauna", AccessCodeType: resource.AccessCodeTypePIN6})
	withoutCodes := resource.MustNewResource(resource.Params{Name: "Room"})

	r := MustNewReservation(1, begin, begin.Add(time.Hour), nil, StateConfirmed)
	require.NoError(t, r.PrepareAccessCode(withCodes))
	assert.Len(t, r.AccessCode(), 6)

	code := r.AccessCode()
	require.NoError(t, r.PrepareAccessCode(withCodes))
	assert.Equal(t, code, r.AccessCode())

	require.NoError(t, r.PrepareAccessCode(withoutCodes))
	assert.Empty(t, r.AccessCode())
}

func TestReservation_IsActive(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, MustNewReservation(1, now, now.Add(time.Hour), nil, StateConfirmed).IsActive(now))
	assert.False(t, MustNewReservation(1, now.Add(-2*time.Hour), now.Add(-time.Hour), nil, StateConfirmed).IsActive(now))
	assert.False(t, MustNewReservation(1, now, now.Add(time.Hour), nil, StateCancelled).IsActive(now))
}

func TestReservation_IsOwn(t *testing.T) {
	now := time.Now()
	r := MustNewReservation(1, now, now.Add(time.Hour), strPtr("u1"), StateConfirmed)

	assert.True(t, r.IsOwn(strPtr("u1")))
	assert.False(t, r.IsOwn(strPtr("u2")))
	assert.False(t, r.IsOwn(nil))
}

func TestReservation_Overlaps(t *testing.T) {
	begin := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := MustNewReservation(1, begin, begin.Add(time.Hour), nil, StateConfirmed)

	assert.True(t, r.Overlaps(begin.Add(30*time.Minute), begin.Add(2*time.Hour)))
	assert.False(t, r.Overlaps(begin.Add(time.Hour), begin.Add(2*time.Hour)))
	assert.False(t, r.Overlaps(begin.Add(-time.Hour), begin))
}
