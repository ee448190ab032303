//go:build !sqlite3_cgo

package db

import (
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Pure-Go driver so the default build needs no cgo.
const driverID = "ncruces/go-sqlite3"
const driverName = "sqlite3"
