// Package catalog persists the shared media catalog in SQLite.
//
// Users, items, reviews and lists live in one database opened through the
// pure-Go modernc driver. Schema changes ship as ordered SQL files embedded
// in the binary and recorded in schema_migrations. Lookups that miss return
// an error matching services.ErrNotFound; uniqueness violations map to
// services.ErrConflict, except item creation, which returns the existing row.
package catalog
