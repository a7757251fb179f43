// Package migrations embeds the goose schema migrations for the postgres store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
