package embedsql

import _ "embed"

// Schema is the full sqlite schema, applied idempotently on startup.
//
//go:embed schema.sql
var Schema string
