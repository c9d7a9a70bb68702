package database

import (
	"fmt"

	"github.com/trellis-db/trellis/internal/database/mysql"
	"github.com/trellis-db/trellis/internal/database/postgres"
)

// New returns an unconnected client for the named provider.
func New(provider string) (Client, error) {
	switch provider {
	case "postgres", "postgresql":
		return postgres.New(), nil
	case "mysql":
		return mysql.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database provider: %s (supported: postgres, mysql)", provider)
	}
}
