// Package migrations embeds the goose SQL migrations, including the
// seeded content: the achievement catalog, the gated entities and the
// word catalog.
package migrations

import "embed"

// FS holds the embedded migration files.
//
//go:embed *.sql
var FS embed.FS
