package purchase

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultVATPercent 既定の付加価値税率
const DefaultVATPercent = 24

var allowedVATPercents = map[int]struct{}{0: {}, 10: {}, 14: {}, 24: {}}

// Purchase 予約に紐づく決済エンティティ
type Purchase struct {
	purchaseID      int64
	purchaseCode    string
	vatPercent      int
	priceVAT        decimal.Decimal
	productName     string
	processStarted  time.Time
	processSuccess  *time.Time
	processFailure  *time.Time
	finished        *time.Time
	status          *PaymentStatus
	ceeposReference string
	paymentAddress  string
}

// NewPurchase 新しいPurchaseエンティティを作成
func NewPurchase(purchaseCode string, priceVAT decimal.Decimal, vatPercent int, productName string) (*Purchase, error) {
	if purchaseCode == "" {
		return nil, fmt.Errorf("%w: purchase code is required", ErrInvalidPurchase)
	}
	if priceVAT.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidPurchase)
	}
	if _, ok := allowedVATPercents[vatPercent]; !ok {
		return nil, fmt.Errorf("%w: vat percent %d is not allowed", ErrInvalidPurchase, vatPercent)
	}

	return &Purchase{
		purchaseCode:   purchaseCode,
		vatPercent:     vatPercent,
		priceVAT:       priceVAT.Round(2),
		productName:    productName,
		processStarted: time.Now(),
	}, nil
}

// MustNewPurchase テスト用のPurchase作成
func MustNewPurchase(purchaseCode string, priceVAT decimal.Decimal, vatPercent int, productName string) *Purchase {
	p, err := NewPurchase(purchaseCode, priceVAT, vatPercent, productName)
	if err != nil {
		panic(err)
	}
	return p
}

// State 永続化された購入の状態
type State struct {
	PurchaseID      int64
	PurchaseCode    string
	VATPercent      int
	PriceVAT        decimal.Decimal
	ProductName     string
	ProcessStarted  time.Time
	ProcessSuccess  *time.Time
	ProcessFailure  *time.Time
	Finished        *time.Time
	Status          *PaymentStatus
	CeeposReference string
	PaymentAddress  string
}

// Restore 永続化された状態からPurchaseを復元
func Restore(s State) *Purchase {
	return &Purchase{
		purchaseID:      s.PurchaseID,
		purchaseCode:    s.PurchaseCode,
		vatPercent:      s.VATPercent,
		priceVAT:        s.PriceVAT,
		productName:     s.ProductName,
		processStarted:  s.ProcessStarted,
		processSuccess:  s.ProcessSuccess,
		processFailure:  s.ProcessFailure,
		finished:        s.Finished,
		status:          s.Status,
		ceeposReference: s.CeeposReference,
		paymentAddress:  s.PaymentAddress,
	}
}

// PurchaseID 購入IDを返す
func (p *Purchase) PurchaseID() int64 {
	return p.purchaseID
}

// AssignID 採番されたIDを設定
func (p *Purchase) AssignID(id int64) {
	p.purchaseID = id
}

// PurchaseCode 商品コードを返す
func (p *Purchase) PurchaseCode() string {
	return p.purchaseCode
}

// VATPercent 付加価値税率を返す
func (p *Purchase) VATPercent() int {
	return p.vatPercent
}

// PriceVAT 税込価格を返す
func (p *Purchase) PriceVAT() decimal.Decimal {
	return p.priceVAT
}

// PriceCents 決済サービスに送るセント単位の価格を返す
func (p *Purchase) PriceCents() int64 {
	return p.priceVAT.Mul(decimal.NewFromInt(100)).IntPart()
}

// ProductName 商品名を返す
func (p *Purchase) ProductName() string {
	return p.productName
}

// ProcessStarted 処理開始日時を返す
func (p *Purchase) ProcessStarted() time.Time {
	return p.processStarted
}

// ProcessSuccess 成功日時を返す
func (p *Purchase) ProcessSuccess() *time.Time {
	return p.processSuccess
}

// ProcessFailure 失敗日時を返す
func (p *Purchase) ProcessFailure() *time.Time {
	return p.processFailure
}

// Finished 完了日時を返す
func (p *Purchase) Finished() *time.Time {
	return p.finished
}

// Status 決済ステータスを返す。未設定ならnil
func (p *Purchase) Status() *PaymentStatus {
	return p.status
}

// CeeposReference 決済参照番号を返す
func (p *Purchase) CeeposReference() string {
	return p.ceeposReference
}

// PaymentAddress 決済ページのURLを返す
func (p *Purchase) PaymentAddress() string {
	return p.paymentAddress
}

// IsSuccess 決済が成功したかどうかを返す
func (p *Purchase) IsSuccess() bool {
	return p.processSuccess != nil
}

// IsFinished 購入処理が完了したかどうかを返す
func (p *Purchase) IsFinished() bool {
	return p.finished != nil
}

// IsInProgress 決済が処理中かどうかを返す
func (p *Purchase) IsInProgress() bool {
	return p.status != nil && *p.status == PaymentStatusInProgress
}

// ApplyPaymentRequest 決済開始の応答を反映
func (p *Purchase) ApplyPaymentRequest(paymentAddress string, status PaymentStatus, reference string) {
	p.paymentAddress = paymentAddress
	p.status = &status
	p.ceeposReference = reference
}

// ApplyCancellation 決済取消の応答を反映
func (p *Purchase) ApplyCancellation(reference string, status PaymentStatus) {
	p.ceeposReference = reference
	p.status = &status
}

// SetSuccess 決済成功を記録し、購入処理を完了させる
func (p *Purchase) SetSuccess(now time.Time) error {
	if p.processSuccess != nil || p.processFailure != nil {
		return ErrCallbackAlreadyReturned
	}
	paid := PaymentStatusPaid
	p.processSuccess = &now
	p.status = &paid
	p.finished = &now
	return nil
}

// SetFailure 決済失敗を記録
func (p *Purchase) SetFailure(now time.Time) error {
	if p.processSuccess != nil || p.processFailure != nil {
		return ErrCallbackAlreadyReturned
	}
	p.processFailure = &now
	return nil
}

// SetFinished 購入処理の完了を記録
func (p *Purchase) SetFinished(now time.Time) error {
	if p.finished != nil {
		return ErrAlreadyFinished
	}
	p.finished = &now
	return nil
}

// IsExpired 処理開始から有効期限を過ぎたかどうかを返す
func (p *Purchase) IsExpired(now time.Time, expiration time.Duration) bool {
	return now.After(p.processStarted.Add(expiration))
}
