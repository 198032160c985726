package ceepos

import (
	"strconv"
)

const (
	// ActionNewPayment 決済開始
	ActionNewPayment = "new payment"
	// ActionDeletePayment 決済取消
	ActionDeletePayment = "delete payment"
	// DefaultLanguage 決済ページの既定の言語
	DefaultLanguage = "fi"
)

// 決済ステータス
const (
	StatusNotPaid    = 0
	StatusPaid       = 1
	StatusInProgress = 2
)

// Product 決済に含める商品
type Product struct {
	Code        string
	Price       int64 // セント単位
	Description string
	TaxCode     string
	Amount      int
}

// NewProduct 新しいProductを作成
func NewProduct(code string, priceCents int64) Product {
	return Product{Code: code, Price: priceCents, Amount: 1}
}

type productBody struct {
	Code  string `json:"Code"`
	Price int64  `json:"Price"`
}

// PaymentRequest 決済開始要求
type PaymentRequest struct {
	OrderID             string
	Action              string
	Description         string
	Products            []Product
	Email               string
	FirstName           string
	LastName            string
	Language            string
	ReturnAddress       string
	NotificationAddress string
}

// NewPaymentRequest 新しいPaymentRequestを作成
func NewPaymentRequest(orderID int64, notificationAddress string) *PaymentRequest {
	return &PaymentRequest{
		OrderID:             strconv.FormatInt(orderID, 10),
		Action:              ActionNewPayment,
		Language:            DefaultLanguage,
		NotificationAddress: notificationAddress,
	}
}

// AddProduct 商品を追加
func (r *PaymentRequest) AddProduct(p Product) {
	r.Products = append(r.Products, p)
}

type paymentRequestBody struct {
	APIVersion          string        `json:"ApiVersion"`
	Source              string        `json:"Source"`
	ID                  string        `json:"Id"`
	Mode                int           `json:"Mode"`
	Action              string        `json:"Action"`
	Description         string        `json:"Description,omitempty"`
	Products            []productBody `json:"Products"`
	Email               string        `json:"Email,omitempty"`
	FirstName           string        `json:"FirstName,omitempty"`
	LastName            string        `json:"LastName,omitempty"`
	Language            string        `json:"Language,omitempty"`
	ReturnAddress       string        `json:"ReturnAddress"`
	NotificationAddress string        `json:"NotificationAddress"`
	Hash                string        `json:"Hash"`
}

// PaymentCancellation 決済取消要求
type PaymentCancellation struct {
	OrderID string
	Action  string
}

// NewPaymentCancellation 新しいPaymentCancellationを作成
func NewPaymentCancellation(orderID int64) *PaymentCancellation {
	return &PaymentCancellation{
		OrderID: strconv.FormatInt(orderID, 10),
		Action:  ActionDeletePayment,
	}
}

type cancellationBody struct {
	APIVersion string `json:"ApiVersion"`
	Source     string `json:"Source"`
	ID         string `json:"Id"`
	Mode       int    `json:"Mode"`
	Action     string `json:"Action"`
	Hash       string `json:"Hash"`
}

// PaymentRequestAck 決済開始要求への応答
type PaymentRequestAck struct {
	PurchaseID     string
	Status         int
	Reference      string
	Action         string
	PaymentAddress string
}

// CancellationAck 決済取消要求への応答
type CancellationAck struct {
	OrderID   string
	Status    int
	Reference string
	Action    string
}

type responseBody struct {
	ID             *Value `json:"Id"`
	Status         *Value `json:"Status"`
	Reference      *Value `json:"Reference"`
	Action         *Value `json:"Action"`
	PaymentAddress *Value `json:"PaymentAddress"`
	Hash           *Value `json:"Hash"`
}
