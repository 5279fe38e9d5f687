// Package identifier классифицирует строку, предъявленную партнёром
// при проверке: email для поиска участника или jti QR-токена.
//
// Классификация чисто структурная: любая строка с символом '@'
// считается email, всё остальное — токеном. Это не валидация адреса;
// строгая проверка синтаксиса, если нужна, выполняется вызывающей
// стороной до классификации.
package identifier

import "strings"

// Kind — вид идентификатора.
type Kind string

// Виды идентификаторов.
const (
	KindEmail Kind = "email"
	KindToken Kind = "token"
)

// Identifier — результат классификации: помеченный вариант,
// по которому движок проверки выбирает путь разрешения участника.
type Identifier struct {
	Kind  Kind
	Value string
}

// Classify — чистая функция классификации предъявленной строки.
// Пробельные символы по краям отбрасываются до проверки.
func Classify(raw string) Identifier {
	value := strings.TrimSpace(raw)
	if strings.Contains(value, "@") {
		return Identifier{Kind: KindEmail, Value: value}
	}
	return Identifier{Kind: KindToken, Value: value}
}
