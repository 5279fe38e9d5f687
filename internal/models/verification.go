package models

import "time"

// VerificationMethod — способ, которым партнёр предъявил идентификатор.
type VerificationMethod string

// Способы проверки.
const (
	MethodQR     VerificationMethod = "qr"
	MethodLookup VerificationMethod = "lookup"
	MethodAPI    VerificationMethod = "api"
)

// Valid сообщает, является ли значение допустимым способом проверки.
func (m VerificationMethod) Valid() bool {
	switch m {
	case MethodQR, MethodLookup, MethodAPI:
		return true
	}
	return false
}

// VerificationResult — итог проверки членства.
type VerificationResult string

// Возможные итоги проверки.
const (
	ResultActive    VerificationResult = "active"
	ResultExpired   VerificationResult = "expired"
	ResultNotFound  VerificationResult = "not_found"
	ResultSuspended VerificationResult = "suspended"
)

// Verification — журнальная запись одной попытки проверки.
// Пишется всегда, независимо от итога, и никогда не обновляется.
// MemberUID равен nil, если идентификатор не удалось разрешить
// в участника.
type Verification struct {
	ID         int
	PartnerUID string
	MemberUID  *string
	Method     VerificationMethod
	Result     VerificationResult
	VerifiedAt time.Time
}

// VerificationOutcome — структура, возвращаемая партнёру по итогам
// проверки. Reason отличает для интерфейса оператора невалидный токен
// от истёкшей подписки; в журнале оба случая сворачиваются в expired.
type VerificationOutcome struct {
	Result             VerificationResult `json:"result"`
	Reason             string             `json:"reason,omitempty"`
	MemberName         string             `json:"member_name,omitempty"`
	Tier               Tier               `json:"tier,omitempty"`
	MemberStatus       MemberStatus       `json:"member_status,omitempty"`
	SubscriptionStatus string             `json:"subscription_status"`
	SubscriptionEnd    *time.Time         `json:"subscription_end,omitempty"`
}
