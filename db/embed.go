// Package db holds the SQL schema applied at startup.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
