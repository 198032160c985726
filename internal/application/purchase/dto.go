package purchase

import (
	"time"

	"respa-server/internal/domain/purchase"
)

// NotificationRequest 決済サービスからの支払い通知
type NotificationRequest struct {
	ID        string
	Status    string
	Reference string
	Hash      string
}

// PurchaseResponse 購入レスポンス
type PurchaseResponse struct {
	PurchaseID      int64
	PurchaseCode    string
	VATPercent      int
	PriceVAT        string
	ProductName     string
	ProcessStarted  time.Time
	ProcessSuccess  *time.Time
	ProcessFailure  *time.Time
	Finished        *time.Time
	Status          *int
	CeeposReference string
	PaymentAddress  string
}

// NewPurchaseResponse エンティティからレスポンスを作成
func NewPurchaseResponse(p *purchase.Purchase) *PurchaseResponse {
	resp := &PurchaseResponse{
		PurchaseID:      p.PurchaseID(),
		PurchaseCode:    p.PurchaseCode(),
		VATPercent:      p.VATPercent(),
		PriceVAT:        p.PriceVAT().StringFixed(2),
		ProductName:     p.ProductName(),
		ProcessStarted:  p.ProcessStarted(),
		ProcessSuccess:  p.ProcessSuccess(),
		ProcessFailure:  p.ProcessFailure(),
		Finished:        p.Finished(),
		CeeposReference: p.CeeposReference(),
		PaymentAddress:  p.PaymentAddress(),
	}
	if s := p.Status(); s != nil {
		v := s.Int()
		resp.Status = &v
	}
	return resp
}
