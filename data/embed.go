package data

import (
	_ "embed"
)

//go:embed initdb/postgres/001-init.sql
var InitdbPostgres string
