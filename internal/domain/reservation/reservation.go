package reservation

import (
	"fmt"
	"time"

	"respa-server/internal/domain/resource"
)

// Reserver 予約者の連絡先と請求先
type Reserver struct {
	Name                 string
	ID                   string
	EmailAddress         string
	PhoneNumber          string
	AddressStreet        string
	AddressZip           string
	AddressCity          string
	Company              string
	BillingAddressStreet string
	BillingAddressZip    string
	BillingAddressCity   string
}

// EventInfo 予約で行われるイベントの情報
type EventInfo struct {
	Subject              string
	Description          string
	NumberOfParticipants *int
	Participants         string
	HostName             string
}

// Reservation 予約エンティティ
type Reservation struct {
	reservationID int64
	resourceID    int64
	begin         time.Time
	end           time.Time
	comments      string
	userID        *string
	state         State
	approverID    *string
	purchaseID    *int64
	accessCode    string
	event         EventInfo
	reserver      Reserver
	originID      string
	createdAt     time.Time
	updatedAt     time.Time
}

// NewReservation 新しいReservationエンティティを作成
func NewReservation(resourceID int64, begin, end time.Time, userID *string, state State) (*Reservation, error) {
	if state == "" {
		state = DefaultState
	}
	if !state.Valid() {
		return nil, fmt.Errorf("%w: invalid state %s", ErrInvalidReservation, state)
	}
	if !end.After(begin) {
		return nil, ErrEndBeforeBegin
	}

	now := time.Now()
	return &Reservation{
		resourceID: resourceID,
		begin:      begin,
		end:        end,
		userID:     userID,
		state:      state,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// MustNewReservation テスト用のReservation作成
func MustNewReservation(resourceID int64, begin, end time.Time, userID *string, state State) *Reservation {
	r, err := NewReservation(resourceID, begin, end, userID, state)
	if err != nil {
		panic(err)
	}
	return r
}

// Snapshot 永続化された予約の状態
type Snapshot struct {
	ReservationID int64
	ResourceID    int64
	Begin         time.Time
	End           time.Time
	Comments      string
	UserID        *string
	State         State
	ApproverID    *string
	PurchaseID    *int64
	AccessCode    string
	Event         EventInfo
	Reserver      Reserver
	OriginID      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Restore 永続化された状態からReservationを復元
func Restore(s Snapshot) *Reservation {
	return &Reservation{
		reservationID: s.ReservationID,
		resourceID:    s.ResourceID,
		begin:         s.Begin,
		end:           s.End,
		comments:      s.Comments,
		userID:        s.UserID,
		state:         s.State,
		approverID:    s.ApproverID,
		purchaseID:    s.PurchaseID,
		accessCode:    s.AccessCode,
		event:         s.Event,
		reserver:      s.Reserver,
		originID:      s.OriginID,
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
	}
}

// ReservationID 予約IDを返す
func (r *Reservation) ReservationID() int64 {
	return r.reservationID
}

// AssignID 採番されたIDを設定
func (r *Reservation) AssignID(id int64) {
	r.reservationID = id
}

// ResourceID リソースIDを返す
func (r *Reservation) ResourceID() int64 {
	return r.resourceID
}

// Begin 開始日時を返す
func (r *Reservation) Begin() time.Time {
	return r.begin
}

// End 終了日時を返す
func (r *Reservation) End() time.Time {
	return r.end
}

// Duration 予約時間を返す
func (r *Reservation) Duration() time.Duration {
	return r.end.Sub(r.begin)
}

// Comments コメントを返す
func (r *Reservation) Comments() string {
	return r.comments
}

// UserID 予約したユーザーのIDを返す
func (r *Reservation) UserID() *string {
	return r.userID
}

// State 予約状態を返す
func (r *Reservation) State() State {
	return r.state
}

// ApproverID 承認者のIDを返す
func (r *Reservation) ApproverID() *string {
	return r.approverID
}

// PurchaseID 紐づく購入のIDを返す
func (r *Reservation) PurchaseID() *int64 {
	return r.purchaseID
}

// HasPurchase 購入が紐づいているかどうかを返す
func (r *Reservation) HasPurchase() bool {
	return r.purchaseID != nil
}

// AccessCode アクセスコードを返す
func (r *Reservation) AccessCode() string {
	return r.accessCode
}

// Event イベント情報を返す
func (r *Reservation) Event() EventInfo {
	return r.event
}

// Reserver 予約者情報を返す
func (r *Reservation) Reserver() Reserver {
	return r.reserver
}

// OriginID 外部システムでのIDを返す
func (r *Reservation) OriginID() string {
	return r.originID
}

// CreatedAt 作成日時を返す
func (r *Reservation) CreatedAt() time.Time {
	return r.createdAt
}

// UpdatedAt 更新日時を返す
func (r *Reservation) UpdatedAt() time.Time {
	return r.updatedAt
}

// SetComments コメントを設定
func (r *Reservation) SetComments(comments string) {
	r.comments = comments
	r.updatedAt = time.Now()
}

// SetEvent イベント情報を設定
func (r *Reservation) SetEvent(e EventInfo) {
	r.event = e
	r.updatedAt = time.Now()
}

// SetReserver 予約者情報を設定
func (r *Reservation) SetReserver(rs Reserver) {
	r.reserver = rs
	r.updatedAt = time.Now()
}

// SetOriginID 外部システムでのIDを設定
func (r *Reservation) SetOriginID(originID string) {
	r.originID = originID
	r.updatedAt = time.Now()
}

// SetAccessCode アクセスコードを設定
func (r *Reservation) SetAccessCode(code string) {
	r.accessCode = code
	r.updatedAt = time.Now()
}

// SetPurchase 購入を紐づける
func (r *Reservation) SetPurchase(purchaseID int64) {
	r.purchaseID = &purchaseID
	r.updatedAt = time.Now()
}

// IsActive 終了しておらず有効な状態かどうかを返す
func (r *Reservation) IsActive(now time.Time) bool {
	return !r.end.Before(now) && r.state.IsCurrent()
}

// IsOwn 指定ユーザーの予約かどうかを返す
func (r *Reservation) IsOwn(userID *string) bool {
	if userID == nil || r.userID == nil {
		return false
	}
	return *userID == *r.userID
}

// Overlaps 指定期間と重なるかどうかを返す
func (r *Reservation) Overlaps(begin, end time.Time) bool {
	return r.begin.Before(end) && r.end.After(begin)
}

// SetState 状態を遷移させる。状態が変化したかどうかと発生したイベントを返す
func (r *Reservation) SetState(newState State, actingUserID *string) (bool, []EventType, error) {
	if !newState.Settable() {
		return false, nil, fmt.Errorf("%w: %s", ErrInvalidStateTransition, newState)
	}

	oldState := r.state
	if newState == oldState {
		if oldState == StateConfirmed {
			return false, []EventType{EventReservationModified}, nil
		}
		return false, nil, nil
	}

	var events []EventType
	if newState == StateConfirmed {
		r.approverID = actingUserID
		events = append(events, EventReservationConfirmed)
	} else if oldState == StateConfirmed {
		r.approverID = nil
	}

	r.state = newState
	r.updatedAt = time.Now()
	return true, events, nil
}

// Validate 予約期間とアクセスコードをリソースの制約に照らして検証
func (r *Reservation) Validate(rsc *resource.Resource) error {
	if !r.end.After(r.begin) {
		return ErrEndBeforeBegin
	}
	if r.Duration() < rsc.MinPeriod() {
		return fmt.Errorf("%w: the minimum reservation length is %s", ErrTooShort, HumanizeDuration(rsc.MinPeriod()))
	}
	if r.accessCode != "" {
		if err := resource.ValidateAccessCode(r.accessCode, rsc.AccessCodeType()); err != nil {
			return err
		}
	}
	return nil
}

// PrepareAccessCode リソースの設定に合わせてアクセスコードを生成または消去
func (r *Reservation) PrepareAccessCode(rsc *resource.Resource) error {
	if !rsc.IsAccessCodeEnabled() {
		r.accessCode = ""
		return nil
	}
	if r.accessCode != "" {
		return nil
	}
	code, err := resource.GenerateAccessCode(rsc.AccessCodeType())
	if err != nil {
		return err
	}
	r.accessCode = code
	return nil
}
