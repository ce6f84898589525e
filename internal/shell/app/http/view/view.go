// Package view рендерит HTML-страницы оболочки из встроенных шаблонов.
package view

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/flosch/pongo2/v6"
	"gopkg.in/yaml.v3"
)

// Имена шаблонов.
const (
	TemplateForm      = "form.html"
	TemplateDashboard = "dashboard.html"
	TemplateNotFound  = "not_found.html"
	TemplateError     = "error.html"
)

// Константы ошибок.
const (
	ErrOpenTemplates   = "failed to open embedded templates"
	ErrLoadTemplate    = "failed to load template"
	ErrRenderTemplate  = "failed to render template"
	ErrParseNavigation = "failed to parse navigation"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed nav.yaml
var navYAML []byte

// NavItem - пункт навигации.
type NavItem struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
	Icon  string `yaml:"icon"`
}

// ActivityItem - запись в карточке недавних действий.
type ActivityItem struct {
	Text string `yaml:"text"`
	When string `yaml:"when"`
}

// Navigation - боковое меню, меню пользователя и недавние действия панели.
type Navigation struct {
	Title    string         `yaml:"title"`
	Items    []NavItem      `yaml:"items"`
	UserMenu []NavItem      `yaml:"userMenu"`
	Activity []ActivityItem `yaml:"activity"`
}

// Renderer рендерит шаблоны страниц.
type Renderer struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	nav       Navigation
}

// New создает Renderer со встроенными шаблонами и навигацией.
func New() (*Renderer, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrOpenTemplates, err)
	}

	nav, err := ParseNavigation(navYAML)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		set:       pongo2.NewSet("acmeshell", pongo2.NewFSLoader(sub)),
		templates: make(map[string]*pongo2.Template),
		nav:       nav,
	}

	for _, name := range []string{TemplateForm, TemplateDashboard, TemplateNotFound, TemplateError} {
		if _, err := r.template(name); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ParseNavigation разбирает описание навигации в YAML.
func ParseNavigation(data []byte) (Navigation, error) {
	var nav Navigation
	if err := yaml.Unmarshal(data, &nav); err != nil {
		return Navigation{}, fmt.Errorf("%s: %w", ErrParseNavigation, err)
	}
	return nav, nil
}

// Navigation возвращает навигацию панели.
func (r *Renderer) Navigation() Navigation {
	return r.nav
}

// Render записывает шаблон name с данными data в w.
func (r *Renderer) Render(w io.Writer, name string, data map[string]any) error {
	tpl, err := r.template(name)
	if err != nil {
		return err
	}
	if err := tpl.ExecuteWriter(pongo2.Context(data), w); err != nil {
		return fmt.Errorf("%s %q: %w", ErrRenderTemplate, name, err)
	}
	return nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	tpl, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tpl, ok := r.templates[name]; ok {
		return tpl, nil
	}
	tpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", ErrLoadTemplate, name, err)
	}
	r.templates[name] = tpl
	return tpl, nil
}
