// Package shell содержит SQL-миграции аккаунтов.
package shell

import "embed"

// FS содержит файлы миграций.
//
//go:embed *.sql
var FS embed.FS
