// Package migrations embeds the goose SQL migration set applied at
// process startup (spec §6 persisted-state layout).
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
