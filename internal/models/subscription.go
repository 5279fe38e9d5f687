package models

import "time"

// SubscriptionStatus — статус подписки, зеркалирует словарь статусов
// биллинговой системы. Локальные записи никогда не изменяют статус
// самостоятельно: источником истины всегда является последнее
// событие биллинга для данного provider_sub_id.
type SubscriptionStatus string

// Статусы подписки биллинговой системы.
const (
	SubStatusActive            SubscriptionStatus = "active"
	SubStatusPastDue           SubscriptionStatus = "past_due"
	SubStatusCanceled          SubscriptionStatus = "canceled"
	SubStatusIncomplete        SubscriptionStatus = "incomplete"
	SubStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubStatusTrialing          SubscriptionStatus = "trialing"
	SubStatusUnpaid            SubscriptionStatus = "unpaid"
)

// Valid сообщает, является ли значение допустимым статусом подписки.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubStatusActive, SubStatusPastDue, SubStatusCanceled, SubStatusIncomplete,
		SubStatusIncompleteExpired, SubStatusTrialing, SubStatusUnpaid:
		return true
	}
	return false
}

// Subscription представляет подписку участника на доступ к сети.
// На одного участника приходится не более одной записи
// (уникальность по member_uid); после отмены запись сохраняется
// для истории со статусом canceled.
type Subscription struct {
	ID                 int
	MemberUID          string             // Владелец подписки
	Provider           string             // Имя биллинг-провайдера, например "stripe"
	ProviderCustomerID string             // Идентификатор клиента у провайдера
	ProviderSubID      string             // Идентификатор подписки у провайдера
	PlanCode           string             // Код тарифного плана из каталога
	Status             SubscriptionStatus // Зеркало статуса провайдера
	Amount             int64              // Сумма за период в минимальных единицах валюты
	Currency           string             // Валюта (ISO 4217, нижний регистр)
	CurrentPeriodStart time.Time          // Начало текущего оплаченного периода
	CurrentPeriodEnd   time.Time          // Конец текущего оплаченного периода
	CanceledAt         *time.Time         // Момент отмены, nil если подписка не отменена
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SubscriptionEvent — нормализованное содержимое события жизненного цикла
// подписки, извлечённое из вебхука биллинга. Передаётся реконсилятору
// вместо сырых структур провайдера.
type SubscriptionEvent struct {
	ProviderSubID      string
	ProviderCustomerID string
	Status             SubscriptionStatus
	Amount             int64
	Currency           string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CanceledAt         *time.Time
	Metadata           map[string]string // member_uid, plan_code и пр.
}
