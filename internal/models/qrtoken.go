package models

import "time"

// QRToken — эфемерный токен для проверки членства по QR-коду.
// Токен действителен, пока revoked = false и expires_at строго
// в будущем. Никогда не продлевается и не удаляется: повторная
// проверка требует выпуска нового jti, отозванные и истёкшие
// записи хранятся для аудита.
type QRToken struct {
	JTI       string // Уникальный идентификатор токена
	MemberUID string // Владелец токена
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}
