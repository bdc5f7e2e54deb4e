// Package db holds avian's embedded SQL migrations.
package db

import "embed"

// MigrationFS contains migrations/*.sql in golang-migrate naming
// (<version>_<name>.up.sql / .down.sql). All objects live in the "avian" schema.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS

// Schema is the schema every migration writes to.
const Schema = "avian"
