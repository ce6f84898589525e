package form

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Session - состояние формы одной страницы между запросами.
type Session[T any] struct {
	ID     string `json:"id"`
	Page   string `json:"page"`
	Values T      `json:"values"`
	Errors Errors `json:"errors,omitempty"`
	// Fingerprints хранит отпечатки значений полей, чтобы замечать изменения
	// без хранения паролей.
	Fingerprints map[string]string `json:"fingerprints,omitempty"`
	Submitting   bool              `json:"submitting"`
	Outcome      *Outcome          `json:"outcome,omitempty"`
	Completed    bool              `json:"completed"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NewSession создает пустую сессию формы для страницы.
func NewSession[T any](page string, now time.Time) *Session[T] {
	return &Session[T]{
		ID:        uuid.NewString(),
		Page:      page,
		Errors:    Errors{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetValues заменяет значения формы. Ошибка поля снимается, если значение
// изменилось и теперь проходит проверку.
func (s *Session[T]) SetValues(schema *Schema[T], values T, now time.Time) {
	if s.Errors == nil {
		s.Errors = Errors{}
	}

	next := s.fingerprints(schema, values)
	for _, field := range s.Errors.Fields() {
		if prev, ok := s.Fingerprints[field]; ok && prev == next[field] {
			continue
		}
		if _, ok := schema.ValidateField(field, values); ok {
			delete(s.Errors, field)
		}
	}

	s.Values = values
	s.Fingerprints = next
	s.UpdatedAt = now
}

// SetErrors заменяет ошибки проверки.
func (s *Session[T]) SetErrors(errs Errors) {
	s.Errors = errs.Clone()
}

// AttachFieldError добавляет ошибку от внешнего сервиса к полю.
func (s *Session[T]) AttachFieldError(field, message string) {
	if s.Errors == nil {
		s.Errors = Errors{}
	}
	s.Errors[field] = message
}

// ClearValues очищает значения и ошибки после успешной отправки.
func (s *Session[T]) ClearValues() {
	var zero T
	s.Values = zero
	s.Errors = Errors{}
	s.Fingerprints = nil
}

func (s *Session[T]) fingerprints(schema *Schema[T], values T) map[string]string {
	out := make(map[string]string, len(schema.fields))
	for _, f := range schema.fields {
		sum := sha256.Sum256([]byte(s.ID + "\x00" + f.Value(values)))
		out[f.Name] = hex.EncodeToString(sum[:8])
	}
	return out
}
