package form

import "time"

// OutcomeKind - вид результата отправки формы.
type OutcomeKind string

// Виды результата отправки.
const (
	OutcomeSuccess      OutcomeKind = "success"
	OutcomeFieldError   OutcomeKind = "field_error"
	OutcomeGeneralError OutcomeKind = "general_error"
)

// Outcome - результат одной попытки отправки формы.
type Outcome struct {
	Kind    OutcomeKind `json:"kind"`
	Message string      `json:"message"`
	// Field заполняется только для OutcomeFieldError.
	Field string `json:"field,omitempty"`
	// Banner - сообщение уровня страницы, сопровождающее ошибку поля.
	Banner        string        `json:"banner,omitempty"`
	Redirect      string        `json:"redirect,omitempty"`
	RedirectAfter time.Duration `json:"redirect_after,omitempty"`
	// Subject - email, подтвержденный внешним сервисом при успешном входе.
	Subject string `json:"subject,omitempty"`
}

// Success создает успешный результат.
func Success(message string) *Outcome {
	return &Outcome{Kind: OutcomeSuccess, Message: message}
}

// FieldError создает результат с ошибкой, привязанной к полю.
func FieldError(field, message string) *Outcome {
	return &Outcome{Kind: OutcomeFieldError, Field: field, Message: message}
}

// GeneralError создает результат с ошибкой уровня страницы.
func GeneralError(message string) *Outcome {
	return &Outcome{Kind: OutcomeGeneralError, Message: message}
}

// WithRedirect добавляет переход на path; after > 0 означает отложенный переход.
func (o *Outcome) WithRedirect(path string, after time.Duration) *Outcome {
	o.Redirect = path
	o.RedirectAfter = after
	return o
}

// WithSubject запоминает подтвержденный email.
func (o *Outcome) WithSubject(email string) *Outcome {
	o.Subject = email
	return o
}

// WithBanner добавляет сообщение уровня страницы.
func (o *Outcome) WithBanner(message string) *Outcome {
	o.Banner = message
	return o
}

// IsSuccess сообщает об успехе.
func (o *Outcome) IsSuccess() bool {
	return o != nil && o.Kind == OutcomeSuccess
}

// IsFieldError сообщает об ошибке поля.
func (o *Outcome) IsFieldError() bool {
	return o != nil && o.Kind == OutcomeFieldError
}

// IsGeneralError сообщает об ошибке уровня страницы.
func (o *Outcome) IsGeneralError() bool {
	return o != nil && o.Kind == OutcomeGeneralError
}

// PageMessage возвращает текст баннера страницы, если он есть.
func (o *Outcome) PageMessage() string {
	switch {
	case o == nil:
		return ""
	case o.Kind == OutcomeFieldError:
		return o.Banner
	default:
		return o.Message
	}
}
