package view

// FieldView - поле формы, готовое к выводу.
type FieldView struct {
	Name        string
	Type        string
	Label       string
	ID          string
	Placeholder string
	// Value пусто для полей пароля.
	Value   string
	Error   string
	Checked bool
}

// Link - ссылка под формой.
type Link struct {
	Prefix string
	Label  string
	Href   string
}

// Виды баннера.
const (
	BannerError   = "error"
	BannerSuccess = "success"
)

// FormPage - данные страницы с формой.
type FormPage struct {
	Title           string
	Description     string
	Action          string
	SubmitLabel     string
	SubmittingLabel string
	SessionID       string
	Fields          []FieldView
	Banner          string
	BannerKind      string
	// Success заменяет форму сообщением, когда HideForm установлен.
	Success    string
	HideForm   bool
	Disabled   bool
	Submitting bool
	Links      []Link
}

// Data возвращает контекст шаблона формы.
func (p FormPage) Data() map[string]any {
	return map[string]any{"page": p}
}
