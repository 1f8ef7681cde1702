// Package all registers every storage backend with the factory.
// Importing it for side effects makes storage.New able to build any
// configured backend.
package all

import (
	_ "radioetl/internal/storage/mssql"
	_ "radioetl/internal/storage/postgres"
	_ "radioetl/internal/storage/sqlite"
)
