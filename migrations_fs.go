package finsnap

import (
	"embed"
	"io/fs"
)

// migrationsFS holds the FinSnap SQL schema tree, including the sqlite
// dialect alternatives under data/sql/migrations/sqlite.
//
//go:embed data/sql/migrations/*.sql data/sql/migrations/sqlite/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the full embedded migration tree.
func GetMigrationsFS() fs.FS {
	return migrationsFS
}

// GetCoreMigrationsFS returns the vault schema migration tree.
func GetCoreMigrationsFS() fs.FS {
	return migrationsFS
}
