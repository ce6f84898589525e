// Package guard решает, доступен ли маршрут для текущей сессии.
package guard

import (
	"strings"

	"acmeshell/internal/shell/domain/session"
)

// Маршруты, которые различает guard.
const (
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"
)

// Action - решение guard.
type Action int

// Возможные решения.
const (
	Allow Action = iota
	Redirect
)

// Decision - результат проверки маршрута.
type Decision struct {
	Action Action
	// Target заполнен только для Redirect.
	Target string
}

var (
	protected = map[string]bool{
		RouteDashboard: true,
	}
	guestOnly = map[string]bool{
		RouteLogin:         true,
		"/register":        true,
		"/forgot-password": true,
	}
)

// normalize приводит путь к виду, в котором он хранится в таблицах.
// Роутер не различает регистр и завершающий "/", поэтому guard тоже.
func normalize(route string) string {
	route = strings.TrimRight(strings.ToLower(route), "/")
	if route == "" {
		return "/"
	}
	return route
}

// Decide возвращает решение для маршрута route. sess равен nil, если
// пользователь не вошел.
func Decide(sess *session.Session, route string) Decision {
	route = normalize(route)
	switch {
	case sess == nil && protected[route]:
		return Decision{Action: Redirect, Target: RouteLogin}
	case sess != nil && guestOnly[route]:
		return Decision{Action: Redirect, Target: RouteDashboard}
	default:
		return Decision{Action: Allow}
	}
}

// Protected сообщает, требует ли маршрут входа.
func Protected(route string) bool {
	return protected[normalize(route)]
}
