package migrations

import "embed"

// FS holds the SQL migrations for the exchange schema. golang-migrate
// reads them through the iofs driver.
//
//go:embed *.sql
var FS embed.FS

// Version is the schema version the service expects after migrating.
const Version = 1
