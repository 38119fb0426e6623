// Package database manages the SQLite connection for Configurizer.
//
// The database stores the settings apply audit trail. The schema is a
// single table created at startup; there is no migrations tree.
//
// Lifecycle:
//
//	db, err := database.Open(cfg)
//	db.EnsureSchema(ctx)
//	defer db.Close()
package database
