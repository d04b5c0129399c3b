// Package catalog persists registered clip nodes and groups in SQLite.
//
// The Store owns the database connection, applies the embedded schema with a
// version guard, and exposes CRUD for the two record kinds the editor works
// with: video nodes (one uploaded clip plus its extracted frame paths and
// metadata) and groups (an ordered list of child node IDs with aggregate
// duration). Schema changes bump schemaVersion in schema.go; the database is
// rebuilt from uploads rather than migrated.
package catalog
