// Package models содержит доменные структуры сервиса HubPass:
// участников сети, их подписки, тарифные планы, QR-токены,
// а также журнальные записи проверок и погашений бенефитов.
package models

import "time"

// MemberStatus — статус участника сети. Закрытое перечисление,
// используется и в бизнес-логике, и в хранилище.
type MemberStatus string

// Возможные статусы участника.
const (
	MemberStatusTrial     MemberStatus = "trial"
	MemberStatusActive    MemberStatus = "active"
	MemberStatusInactive  MemberStatus = "inactive"
	MemberStatusExpired   MemberStatus = "expired"
	MemberStatusSuspended MemberStatus = "suspended"
)

// Valid сообщает, является ли значение допустимым статусом участника.
func (s MemberStatus) Valid() bool {
	switch s {
	case MemberStatusTrial, MemberStatusActive, MemberStatusInactive,
		MemberStatusExpired, MemberStatusSuspended:
		return true
	}
	return false
}

// Tier — уровень членства, определяет доступные бенефиты.
type Tier string

// Уровни членства.
const (
	TierMember Tier = "Member"
	TierTenant Tier = "Tenant"
	TierGlobal Tier = "Global"
)

// Valid сообщает, является ли значение допустимым уровнем членства.
func (t Tier) Valid() bool {
	switch t {
	case TierMember, TierTenant, TierGlobal:
		return true
	}
	return false
}

// Member представляет участника сети коворкингов.
// UID совпадает с идентификатором учётной записи во внешнем
// identity-провайдере; ровно одна запись на учётную запись.
// Запись создаётся при регистрации со статусом trial и далее
// изменяется только реконсилятором по событиям биллинга.
type Member struct {
	UID         string       // Уникальный идентификатор (uuid identity-провайдера)
	Email       string       // Электронная почта
	FirstName   string       // Имя
	LastName    string       // Фамилия
	Status      MemberStatus // Текущий статус членства
	Tier        Tier         // Уровень членства
	CountryCode string       // Код страны (ISO 3166-1 alpha-2)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DisplayName возвращает имя участника для вывода партнёру при проверке.
func (m *Member) DisplayName() string {
	if m.FirstName == "" {
		return m.LastName
	}
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// DummyMember используется для приёма данных из JSON-запроса
// на регистрацию участника, прежде чем конвертировать их в Member.
type DummyMember struct {
	UID         string `json:"uid" validate:"required,uuid"`
	Email       string `json:"email" validate:"required"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Tier        string `json:"tier" validate:"required"`
	CountryCode string `json:"country_code" validate:"omitempty,len=2"`
}
