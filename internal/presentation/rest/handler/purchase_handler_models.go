package handler

import (
	"time"

	purchaseapp "respa-server/internal/application/purchase"
)

// PurchaseResponse 購入レスポンス
// @Description 購入レスポンス
type PurchaseResponse struct {
	ID              int64      `json:"id" example:"5"`
	PurchaseCode    string     `json:"purchase_code" example:"TEST1"`
	VATPercent      int        `json:"vat_percent" example:"24"`
	PriceVAT        string     `json:"price_vat" example:"20.00"`
	ProductName     string     `json:"product_name" example:"Studio"`
	ProcessStarted  time.Time  `json:"purchase_process_started"`
	ProcessSuccess  *time.Time `json:"purchase_process_success,omitempty"`
	ProcessFailure  *time.Time `json:"purchase_process_failure,omitempty"`
	Finished        *time.Time `json:"purchase_process_notified,omitempty"`
	Status          *int       `json:"payment_status,omitempty" example:"2"`
	CeeposReference string     `json:"payment_service_reference,omitempty"`
	PaymentAddress  string     `json:"payment_address,omitempty"`
}

func newPurchaseResponse(p *purchaseapp.PurchaseResponse) PurchaseResponse {
	return PurchaseResponse{
		ID:              p.PurchaseID,
		PurchaseCode:    p.PurchaseCode,
		VATPercent:      p.VATPercent,
		PriceVAT:        p.PriceVAT,
		ProductName:     p.ProductName,
		ProcessStarted:  p.ProcessStarted,
		ProcessSuccess:  p.ProcessSuccess,
		ProcessFailure:  p.ProcessFailure,
		Finished:        p.Finished,
		Status:          p.Status,
		CeeposReference: p.CeeposReference,
		PaymentAddress:  p.PaymentAddress,
	}
}
