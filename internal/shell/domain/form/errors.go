package form

import (
	"errors"
	"maps"
	"slices"
)

// Ошибки построения схемы.
var (
	ErrEmptyFieldName    = errors.New("field name cannot be empty")
	ErrDuplicateField    = errors.New("duplicate field name")
	ErrMissingAccessor   = errors.New("field accessor is required")
	ErrUnknownFieldRef   = errors.New("constraint references undeclared field")
	ErrSelfFieldRef      = errors.New("constraint references its own field")
	ErrNonTextConstraint = errors.New("boolean field cannot carry constraints")
)

// Errors - сообщения об ошибках по именам полей.
type Errors map[string]string

// Get возвращает сообщение об ошибке поля.
func (e Errors) Get(field string) string {
	return e[field]
}

// Has сообщает, есть ли ошибка у поля.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Empty сообщает, что ошибок нет.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Fields возвращает отсортированные имена полей с ошибками.
func (e Errors) Fields() []string {
	return slices.Sorted(maps.Keys(e))
}

// Clone возвращает независимую копию.
func (e Errors) Clone() Errors {
	if e == nil {
		return Errors{}
	}
	return maps.Clone(e)
}
