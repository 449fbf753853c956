package database

import (
	"github.com/Rana718/transit-studio/internal/database/mysql"
	"github.com/Rana718/transit-studio/internal/database/postgres"
	"github.com/Rana718/transit-studio/internal/database/sqlite"
)

func NewAdapter(provider string) Adapter {
	switch provider {
	case "postgresql", "postgres":
		return postgres.New()
	case "mysql":
		return mysql.New()
	case "sqlite", "sqlite3":
		return sqlite.New()
	default:
		return postgres.New()
	}
}
