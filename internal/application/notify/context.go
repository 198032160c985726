package notify

import (
	"fmt"
	"strconv"
	"time"

	"respa-server/internal/domain/purchase"
	"respa-server/internal/domain/reservation"
	"respa-server/internal/domain/resource"
	"respa-server/internal/domain/user"
)

const manualConfirmationLabel = "Need manual confirmation"

// contextKeys テンプレートから参照できるキー。未設定のキーは空文字列になる
var contextKeys = []string{
	"resource",
	"begin",
	"end",
	"time_range",
	"number_of_participants",
	"host_name",
	"reserver_name",
	"reserver_phone_number",
	"reserver_email_address",
	"event_subject",
	"manual_confirmation",
	"purchase_link",
	"unit",
	"responsible_contact_info",
	"access_code",
	"extra_content",
}

// BuildContext 通知テンプレートに渡す値を組み立てる
func BuildContext(language string, r *reservation.Reservation, rsc *resource.Resource, p *purchase.Purchase, owner *user.User, loc *time.Location) map[string]interface{} {
	data := make(map[string]interface{}, len(contextKeys)+2)
	for _, k := range contextKeys {
		data[k] = ""
	}

	reserver := r.Reserver()
	event := r.Event()

	data["resource"] = rsc.Name()
	data["begin"] = localizeDateTime(language, r.Begin(), loc)
	data["end"] = localizeDateTime(language, r.End(), loc)
	data["begin_dt"] = r.Begin()
	data["end_dt"] = r.End()
	data["time_range"] = reservation.FormatTimeRange(language, r.Begin(), r.End(), loc)
	if event.NumberOfParticipants != nil {
		data["number_of_participants"] = strconv.Itoa(*event.NumberOfParticipants)
	}
	data["host_name"] = event.HostName
	data["event_subject"] = event.Subject
	data["reserver_phone_number"] = reserver.PhoneNumber

	reserverName := reserver.Name
	if reserverName == "" && owner != nil {
		reserverName = owner.DisplayName()
	}
	data["reserver_name"] = reserverName

	if owner != nil {
		data["reserver_email_address"] = owner.Email()
	}

	if rsc.NeedManualConfirmation() {
		data["manual_confirmation"] = manualConfirmationLabel
	}

	switch {
	case p != nil && p.PaymentAddress() != "":
		data["purchase_link"] = p.PaymentAddress()
	case p != nil:
		data["purchase_link"] = fmt.Sprintf("Purchase object: %d", p.PurchaseID())
	}

	data["unit"] = rsc.UnitName()
	data["responsible_contact_info"] = rsc.ResponsibleContactInfo()

	if r.AccessCode() != "" && canViewAccessCode(r, owner) {
		data["access_code"] = r.AccessCode()
	}
	if extra := rsc.ConfirmedNotificationExtra(); extra != "" {
		data["extra_content"] = extra + " - "
	}

	return data
}

// canViewAccessCode アクセスコードは予約者本人とスタッフのみ閲覧できる
func canViewAccessCode(r *reservation.Reservation, viewer *user.User) bool {
	if viewer == nil {
		return false
	}
	return viewer.IsStaff() || viewer.Is(r.UserID())
}

func localizeDateTime(language string, t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	if language == "fi" {
		return fmt.Sprintf("%d.%d.%d klo %d.%02d", t.Day(), int(t.Month()), t.Year(), t.Hour(), t.Minute())
	}
	return fmt.Sprintf("%d/%d/%d %d:%02d", t.Day(), int(t.Month()), t.Year(), t.Hour(), t.Minute())
}
