package migration

import (
	"embed"
	"io/fs"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"
)

//go:embed resource
var rawMigrationFS embed.FS

// MigrationsFS returns the embedded migrations, one directory per database type
// ("postgres", "mysql", "sqlite").
func MigrationsFS() fs.FS {
	subFS, err := fs.Sub(rawMigrationFS, "resource")
	if err != nil {
		logger.Fatalf("Failed to open embedded migration resources: %v", err)
	}
	return subFS
}
