package engine

import (
	"fmt"
	"os"

	"editcore/internal/infra/persistence/memory"
	"editcore/internal/infra/persistence/postgres"
	"editcore/internal/infra/persistence/sqlite"
	"editcore/pkg/collection"
)

// AdapterDriver identifies a concrete reference adapter implementation.
type AdapterDriver string

const (
	AdapterMemory   AdapterDriver = "memory"   // in-process only (tests / ephemeral)
	AdapterSQLite   AdapterDriver = "sqlite"   // embedded sqlite file
	AdapterPostgres AdapterDriver = "postgres" // PostgreSQL server
)

// OpenAdapter selects a reference adapter for the named entity kind using
// environment variables. Defaults to memory when unset.
//
//	EDITCORE_ADAPTER_DRIVER: memory|sqlite|postgres (default memory)
//	EDITCORE_SQLITE_PATH: path to sqlite file (default ./editcore.db)
//	EDITCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenAdapter(entity string) (collection.Adapter, error) {
	driver := os.Getenv("EDITCORE_ADAPTER_DRIVER")
	if driver == "" {
		driver = string(AdapterMemory)
	}
	switch AdapterDriver(driver) {
	case AdapterMemory:
		return memory.NewStore(entity), nil
	case AdapterSQLite:
		return sqlite.NewStore(os.Getenv("EDITCORE_SQLITE_PATH"), entity)
	case AdapterPostgres:
		return postgres.NewStore(os.Getenv("EDITCORE_POSTGRES_DSN"), entity)
	default:
		return nil, fmt.Errorf("engine: unknown adapter driver %s", driver)
	}
}
