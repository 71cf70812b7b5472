// Package migrations embeds the SQL schema for the durable storage drivers,
// in golang-migrate file naming.
package migrations

import "embed"

// Postgres holds the migrations applied by "ledgerd migrate".
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite holds the migrations applied when a SQLite database is opened.
//
//go:embed sqlite/*.sql
var SQLite embed.FS
