package models

import "time"

// RedemptionStatus — статус погашения бенефита.
type RedemptionStatus string

// Статусы погашения.
const (
	RedemptionCompleted RedemptionStatus = "completed"
	RedemptionVoided    RedemptionStatus = "voided"
)

// Redemption — журнальная запись погашения бенефита по офферу
// у партнёра. Пишется после успешной проверки членства и никогда
// не обновляется, кроме явной отмены (status = voided).
type Redemption struct {
	ID         int
	OfferCode  string
	PartnerUID string
	MemberUID  string
	Amount     int64
	Currency   string
	Method     VerificationMethod
	Status     RedemptionStatus
	Note       string
	RedeemedAt time.Time
}

// DummyRedemption используется для приёма данных из JSON-запроса
// на погашение, прежде чем конвертировать их в Redemption.
type DummyRedemption struct {
	OfferCode string `json:"offer_code" validate:"required"`
	MemberUID string `json:"member_uid" validate:"required,uuid"`
	Amount    int64  `json:"amount" validate:"gte=0"`
	Currency  string `json:"currency" validate:"required,len=3"`
	Note      string `json:"note"`
}
