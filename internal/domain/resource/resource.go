package resource

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Params Resource作成パラメータ
type Params struct {
	ResourceID                 int64
	Name                       string
	UnitName                   string
	OwnerEmail                 string
	NeedManualConfirmation     bool
	CeeposPaymentRequired      bool
	ProductCode                string
	MinPricePerHour            decimal.Decimal
	MinPeriod                  time.Duration
	AccessCodeType             AccessCodeType
	ResponsibleContactInfo     string
	ConfirmedNotificationExtra string
}

// Resource 予約対象のリソースエンティティ
type Resource struct {
	resourceID                 int64
	name                       string
	unitName                   string
	ownerEmail                 string
	needManualConfirmation     bool
	ceeposPaymentRequired      bool
	productCode                string
	minPricePerHour            decimal.Decimal
	minPeriod                  time.Duration
	accessCodeType             AccessCodeType
	responsibleContactInfo     string
	confirmedNotificationExtra string
}

// NewResource 新しいResourceエンティティを作成
func NewResource(p Params) (*Resource, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidResource)
	}
	if p.MinPricePerHour.IsNegative() {
		return nil, fmt.Errorf("%w: min price per hour must not be negative", ErrInvalidResource)
	}
	if p.MinPeriod < 0 {
		return nil, fmt.Errorf("%w: min period must not be negative", ErrInvalidResource)
	}
	if p.AccessCodeType == "" {
		p.AccessCodeType = AccessCodeTypeNone
	}
	if _, err := NewAccessCodeType(p.AccessCodeType.String()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResource, err)
	}

	return &Resource{
		resourceID:                 p.ResourceID,
		name:                       p.Name,
		unitName:                   p.UnitName,
		ownerEmail:                 p.OwnerEmail,
		needManualConfirmation:     p.NeedManualConfirmation,
		ceeposPaymentRequired:      p.CeeposPaymentRequired,
		productCode:                p.ProductCode,
		minPricePerHour:            p.MinPricePerHour,
		minPeriod:                  p.MinPeriod,
		accessCodeType:             p.AccessCodeType,
		responsibleContactInfo:     p.ResponsibleContactInfo,
		confirmedNotificationExtra: p.ConfirmedNotificationExtra,
	}, nil
}

// MustNewResource テスト用のResource作成
func MustNewResource(p Params) *Resource {
	r, err := NewResource(p)
	if err != nil {
		panic(err)
	}
	return r
}

// ResourceID リソースIDを返す
func (r *Resource) ResourceID() int64 {
	return r.resourceID
}

// Name 名前を返す
func (r *Resource) Name() string {
	return r.name
}

// UnitName 所属ユニット名を返す
func (r *Resource) UnitName() string {
	return r.unitName
}

// OwnerEmail 管理者のメールアドレスを返す
func (r *Resource) OwnerEmail() string {
	return r.ownerEmail
}

// NeedManualConfirmation 手動承認が必要かどうかを返す
func (r *Resource) NeedManualConfirmation() bool {
	return r.needManualConfirmation
}

// CeeposPaymentRequired 決済が必要かどうかを返す
func (r *Resource) CeeposPaymentRequired() bool {
	return r.ceeposPaymentRequired
}

// ProductCode 決済用の商品コードを返す
func (r *Resource) ProductCode() string {
	return r.productCode
}

// MinPricePerHour 1時間あたりの最低料金を返す
func (r *Resource) MinPricePerHour() decimal.Decimal {
	return r.minPricePerHour
}

// MinPeriod 最短予約時間を返す
func (r *Resource) MinPeriod() time.Duration {
	return r.minPeriod
}

// AccessCodeType アクセスコードの種類を返す
func (r *Resource) AccessCodeType() AccessCodeType {
	return r.accessCodeType
}

// ResponsibleContactInfo 担当者連絡先を返す
func (r *Resource) ResponsibleContactInfo() string {
	return r.responsibleContactInfo
}

// ConfirmedNotificationExtra 承認通知に追加する本文を返す
func (r *Resource) ConfirmedNotificationExtra() string {
	return r.confirmedNotificationExtra
}

// IsAccessCodeEnabled アクセスコードが有効かどうかを返す
func (r *Resource) IsAccessCodeEnabled() bool {
	return r.accessCodeType.Enabled()
}

// RequiresPayment 予約確定時に決済を作成すべきかどうかを返す
func (r *Resource) RequiresPayment() bool {
	return r.ceeposPaymentRequired && r.productCode != ""
}

// PriceFor 予約時間に対する税込価格を返す
func (r *Resource) PriceFor(begin, end time.Time) decimal.Decimal {
	seconds := decimal.NewFromInt(int64(end.Sub(begin) / time.Second))
	hours := seconds.Div(decimal.NewFromInt(3600))
	return r.minPricePerHour.Mul(hours).Round(2)
}
