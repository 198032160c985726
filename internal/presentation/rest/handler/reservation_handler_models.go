package handler

import (
	"time"

	reservationapp "respa-server/internal/application/reservation"
	"respa-server/internal/domain/reservation"
)

// CreateReservationRequest 予約作成リクエスト
// @Description 予約作成リクエスト
type CreateReservationRequest struct {
	ResourceID            int64     `json:"resource_id" example:"1"`
	Begin                 time.Time `json:"begin" example:"2017-01-01T12:00:00+02:00"`
	End                   time.Time `json:"end" example:"2017-01-01T14:00:00+02:00"`
	Comments              string    `json:"comments"`
	AccessCode            string    `json:"access_code,omitempty" example:"12345"`
	EventSubject          string    `json:"event_subject" example:"Band practice"`
	EventDescription      string    `json:"event_description"`
	NumberOfParticipants  *int      `json:"number_of_participants,omitempty" example:"4"`
	Participants          string    `json:"participants"`
	HostName              string    `json:"host_name"`
	ReserverName          string    `json:"reserver_name" example:"Matti Meikäläinen"`
	ReserverID            string    `json:"reserver_id"`
	ReserverEmailAddress  string    `json:"reserver_email_address" example:"matti@example.com"`
	ReserverPhoneNumber   string    `json:"reserver_phone_number"`
	ReserverAddressStreet string    `json:"reserver_address_street"`
	ReserverAddressZip    string    `json:"reserver_address_zip"`
	ReserverAddressCity   string    `json:"reserver_address_city"`
	Company               string    `json:"company"`
	BillingAddressStreet  string    `json:"billing_address_street"`
	BillingAddressZip     string    `json:"billing_address_zip"`
	BillingAddressCity    string    `json:"billing_address_city"`
}

func (r *CreateReservationRequest) event() reservation.EventInfo {
	return reservation.EventInfo{
		Subject:              r.EventSubject,
		Description:          r.EventDescription,
		NumberOfParticipants: r.NumberOfParticipants,
		Participants:         r.Participants,
		HostName:             r.HostName,
	}
}

func (r *CreateReservationRequest) reserver() reservation.Reserver {
	return reservation.Reserver{
		Name:                 r.ReserverName,
		ID:                   r.ReserverID,
		EmailAddress:         r.ReserverEmailAddress,
		PhoneNumber:          r.ReserverPhoneNumber,
		AddressStreet:        r.ReserverAddressStreet,
		AddressZip:           r.ReserverAddressZip,
		AddressCity:          r.ReserverAddressCity,
		Company:              r.Company,
		BillingAddressStreet: r.BillingAddressStreet,
		BillingAddressZip:    r.BillingAddressZip,
		BillingAddressCity:   r.BillingAddressCity,
	}
}

// SetStateRequest 予約状態変更リクエスト
// @Description 予約状態変更リクエスト
type SetStateRequest struct {
	State string `json:"state" example:"confirmed" enums:"requested,confirmed,denied,cancelled"`
}

// ReservationResponse 予約レスポンス
// @Description 予約レスポンス
type ReservationResponse struct {
	ID                   int64     `json:"id" example:"10"`
	ResourceID           int64     `json:"resource_id" example:"1"`
	Begin                time.Time `json:"begin"`
	End                  time.Time `json:"end"`
	State                string    `json:"state" example:"confirmed"`
	UserID               *string   `json:"user_id,omitempty"`
	ApproverID           *string   `json:"approver_id,omitempty"`
	PurchaseID           *int64    `json:"purchase_id,omitempty"`
	AccessCode           string    `json:"access_code,omitempty"`
	Comments             string    `json:"comments,omitempty"`
	EventSubject         string    `json:"event_subject,omitempty"`
	EventDescription     string    `json:"event_description,omitempty"`
	NumberOfParticipants *int      `json:"number_of_participants,omitempty"`
	ReserverName         string    `json:"reserver_name,omitempty"`
	ReserverEmailAddress string    `json:"reserver_email_address,omitempty"`
	PaymentAddress       string    `json:"payment_address,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// newReservationResponse 個人情報とアクセスコードは予約者本人かスタッフにのみ返す
func newReservationResponse(r *reservationapp.ReservationResponse, viewerID string, isStaff bool) ReservationResponse {
	resp := ReservationResponse{
		ID:         r.ReservationID,
		ResourceID: r.ResourceID,
		Begin:      r.Begin,
		End:        r.End,
		State:      r.State,
		UserID:     r.UserID,
		ApproverID: r.ApproverID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if !isStaff && !isOwner(r, viewerID) {
		return resp
	}
	resp.PurchaseID = r.PurchaseID
	resp.AccessCode = r.AccessCode
	resp.Comments = r.Comments
	resp.EventSubject = r.Event.Subject
	resp.EventDescription = r.Event.Description
	resp.NumberOfParticipants = r.Event.NumberOfParticipants
	resp.ReserverName = r.Reserver.Name
	resp.ReserverEmailAddress = r.Reserver.EmailAddress
	resp.PaymentAddress = r.PaymentAddress
	return resp
}

func isOwner(r *reservationapp.ReservationResponse, userID string) bool {
	return r.UserID != nil && userID != "" && *r.UserID == userID
}
