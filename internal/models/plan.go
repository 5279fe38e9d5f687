package models

// Plan — запись каталога тарифных планов. Справочные данные,
// неизменяемые с точки зрения сервиса: каталог заполняется миграциями
// и читается при создании checkout-сессии.
type Plan struct {
	Code     string   // Уникальный код плана, например "member-monthly"
	Name     string   // Отображаемое название
	Amount   int64    // Цена за период в минимальных единицах валюты
	Currency string   // Валюта (ISO 4217, нижний регистр)
	Interval string   // Интервал оплаты: month или year
	Features []string // Список включённых возможностей
}
