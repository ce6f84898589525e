package form

import (
	"strconv"

	"github.com/go-playground/validator/v10"
)

// ConstraintKind - вид ограничения поля.
type ConstraintKind string

// Поддерживаемые виды ограничений.
const (
	KindRequired    ConstraintKind = "required"
	KindMinLength   ConstraintKind = "min_length"
	KindEmail       ConstraintKind = "email"
	KindEqualsField ConstraintKind = "equals_field"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Constraint - ограничение значения поля вместе с сообщением для пользователя.
type Constraint struct {
	Kind    ConstraintKind
	Message string

	min   int
	other string
}

// Required требует непустое значение.
func Required(message string) Constraint {
	return Constraint{Kind: KindRequired, Message: message}
}

// MinLength требует не менее n символов.
func MinLength(n int, message string) Constraint {
	return Constraint{Kind: KindMinLength, Message: message, min: n}
}

// Email требует корректный адрес электронной почты. Пустое значение не проходит.
func Email(message string) Constraint {
	return Constraint{Kind: KindEmail, Message: message}
}

// EqualsField требует совпадения со значением другого поля.
func EqualsField(other, message string) Constraint {
	return Constraint{Kind: KindEqualsField, Message: message, other: other}
}

func (c Constraint) crossField() bool {
	return c.Kind == KindEqualsField
}

// check проверяет одиночное значение. Перекрестные ограничения проверяются в checkAgainst.
func (c Constraint) check(value string) bool {
	var tag string
	switch c.Kind {
	case KindRequired:
		tag = "required"
	case KindMinLength:
		tag = "min=" + strconv.Itoa(c.min)
	case KindEmail:
		tag = "required,email"
	default:
		return true
	}
	return validate.Var(value, tag) == nil
}

func (c Constraint) checkAgainst(value, other string) bool {
	return validate.VarWithValue(value, other, "eqcsfield") == nil
}
