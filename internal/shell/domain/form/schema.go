// Package form описывает схемы полей форм, их проверку и состояние формы между запросами.
package form

import (
	"fmt"
	"strconv"
)

// FieldKind - тип поля ввода.
type FieldKind string

// Поддерживаемые типы полей.
const (
	TextField     FieldKind = "text"
	EmailField    FieldKind = "email"
	PasswordField FieldKind = "password"
	BooleanField  FieldKind = "boolean"
)

// Field - описание поля формы над записью T.
type Field[T any] struct {
	Name        string
	Kind        FieldKind
	Label       string
	InputID     string
	Placeholder string
	// Value извлекает значение поля из записи.
	Value       func(T) string
	Constraints []Constraint
}

// Input возвращает тип HTML-элемента input для поля.
func (f Field[T]) Input() string {
	switch f.Kind {
	case EmailField:
		return "email"
	case PasswordField:
		return "password"
	case BooleanField:
		return "checkbox"
	default:
		return "text"
	}
}

// BoolValue извлекает значение флажка.
func BoolValue[T any](get func(T) bool) func(T) string {
	return func(v T) string {
		return strconv.FormatBool(get(v))
	}
}

// Schema - неизменяемый упорядоченный набор полей.
type Schema[T any] struct {
	name   string
	fields []Field[T]
	index  map[string]int
}

// NewSchema создает схему и проверяет, что все ссылки ограничений указывают на объявленные поля.
func NewSchema[T any](name string, fields ...Field[T]) (*Schema[T], error) {
	s := &Schema[T]{
		name:   name,
		fields: make([]Field[T], 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%s: %w", name, ErrEmptyFieldName)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("%s.%s: %w", name, f.Name, ErrDuplicateField)
		}
		if f.Value == nil {
			return nil, fmt.Errorf("%s.%s: %w", name, f.Name, ErrMissingAccessor)
		}
		if f.Kind == BooleanField && len(f.Constraints) > 0 {
			return nil, fmt.Errorf("%s.%s: %w", name, f.Name, ErrNonTextConstraint)
		}
		if f.InputID == "" {
			f.InputID = f.Name
		}
		f.Constraints = append([]Constraint(nil), f.Constraints...)
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}

	for _, f := range s.fields {
		for _, c := range f.Constraints {
			if !c.crossField() {
				continue
			}
			if c.other == f.Name {
				return nil, fmt.Errorf("%s.%s: %w", name, f.Name, ErrSelfFieldRef)
			}
			if _, ok := s.index[c.other]; !ok {
				return nil, fmt.Errorf("%s.%s -> %s: %w", name, f.Name, c.other, ErrUnknownFieldRef)
			}
		}
	}

	return s, nil
}

// MustSchema как NewSchema, но паникует при ошибке.
func MustSchema[T any](name string, fields ...Field[T]) *Schema[T] {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name возвращает имя схемы.
func (s *Schema[T]) Name() string {
	return s.name
}

// Fields возвращает копию списка полей в порядке объявления.
func (s *Schema[T]) Fields() []Field[T] {
	return append([]Field[T](nil), s.fields...)
}

// Field возвращает поле по имени.
func (s *Schema[T]) Field(name string) (Field[T], bool) {
	i, ok := s.index[name]
	if !ok {
		return Field[T]{}, false
	}
	return s.fields[i], true
}

// Values возвращает строковые значения всех полей.
func (s *Schema[T]) Values(values T) map[string]string {
	out := make(map[string]string, len(s.fields))
	for _, f := range s.fields {
		out[f.Name] = f.Value(values)
	}
	return out
}

// Validate проверяет запись целиком. Для каждого поля сообщается первое
// нарушенное ограничение; перекрестные ограничения проверяются после всех
// одиночных и не перекрывают уже найденную ошибку поля.
func (s *Schema[T]) Validate(values T) Errors {
	errs := Errors{}

	for _, f := range s.fields {
		if msg, ok := s.checkSingle(f, values); !ok {
			errs[f.Name] = msg
		}
	}

	for _, f := range s.fields {
		if errs.Has(f.Name) {
			continue
		}
		if msg, ok := s.checkCross(f, values); !ok {
			errs[f.Name] = msg
		}
	}

	return errs
}

// ValidateField проверяет одно поле с учетом перекрестных ограничений.
func (s *Schema[T]) ValidateField(name string, values T) (string, bool) {
	f, ok := s.Field(name)
	if !ok {
		return "", true
	}
	if msg, ok := s.checkSingle(f, values); !ok {
		return msg, false
	}
	return s.checkCross(f, values)
}

func (s *Schema[T]) checkSingle(f Field[T], values T) (string, bool) {
	value := f.Value(values)
	for _, c := range f.Constraints {
		if c.crossField() {
			continue
		}
		if !c.check(value) {
			return c.Message, false
		}
	}
	return "", true
}

func (s *Schema[T]) checkCross(f Field[T], values T) (string, bool) {
	value := f.Value(values)
	for _, c := range f.Constraints {
		if !c.crossField() {
			continue
		}
		other := s.fields[s.index[c.other]]
		if !c.checkAgainst(value, other.Value(values)) {
			return c.Message, false
		}
	}
	return "", true
}
