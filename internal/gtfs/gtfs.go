// Package gtfs creates the transit tables the studio browses and can seed
// them with a small demo network.
package gtfs

import (
	"context"
	"fmt"
	"strings"
)

// Tables in dependency order.
var Tables = []string{"agency", "stops", "routes", "shapes", "trips", "stop_times"}

// Execer runs a script of semicolon separated statements.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

type Options struct {
	Provider string
	Demo     bool
	// Reset drops the tables before creating them.
	Reset bool
}

const ddlTemplate = `
CREATE TABLE IF NOT EXISTS agency (
	agency_id VARCHAR(64) PRIMARY KEY,
	agency_name VARCHAR(255) NOT NULL,
	agency_url VARCHAR(255),
	agency_timezone VARCHAR(64)
);

CREATE TABLE IF NOT EXISTS stops (
	stop_id VARCHAR(64) PRIMARY KEY,
	stop_code VARCHAR(64),
	stop_name VARCHAR(255) NOT NULL,
	stop_lat DOUBLE PRECISION,
	stop_lon DOUBLE PRECISION,
	wheelchair_boarding INTEGER
);

CREATE TABLE IF NOT EXISTS routes (
	route_id VARCHAR(64) PRIMARY KEY,
	agency_id VARCHAR(64),
	route_short_name VARCHAR(64),
	route_long_name VARCHAR(255),
	route_type INTEGER NOT NULL,
	route_color VARCHAR(8)
);

CREATE TABLE IF NOT EXISTS shapes (
	shape_id VARCHAR(64) PRIMARY KEY,
	shape_name VARCHAR(255),
	geometry TEXT
);

CREATE TABLE IF NOT EXISTS trips (
	trip_id VARCHAR(64) PRIMARY KEY,
	route_id VARCHAR(64) NOT NULL,
	service_id VARCHAR(64),
	trip_headsign VARCHAR(255),
	direction_id INTEGER,
	shape_id VARCHAR(64)
);

CREATE TABLE IF NOT EXISTS stop_times (
	id {{AUTO_ID}},
	trip_id VARCHAR(64) NOT NULL,
	arrival_time VARCHAR(8),
	departure_time VARCHAR(8),
	stop_id VARCHAR(64) NOT NULL,
	stop_sequence INTEGER NOT NULL
);
`

// DDL returns the create script for provider. Only the auto-increment key of
// stop_times differs between engines.
func DDL(provider string) (string, error) {
	var autoID string
	switch provider {
	case "postgresql", "postgres":
		autoID = "SERIAL PRIMARY KEY"
	case "mysql":
		autoID = "INTEGER AUTO_INCREMENT PRIMARY KEY"
	case "sqlite", "sqlite3":
		autoID = "INTEGER PRIMARY KEY AUTOINCREMENT"
	default:
		return "", fmt.Errorf("unsupported database provider: %s", provider)
	}
	return strings.ReplaceAll(ddlTemplate, "{{AUTO_ID}}", autoID), nil
}

func DropScript() string {
	var b strings.Builder
	for i := len(Tables) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "DROP TABLE IF EXISTS %s;\n", Tables[i])
	}
	return b.String()
}

// Init creates the tables and optionally loads the demo network.
func Init(ctx context.Context, db Execer, opts Options) error {
	ddl, err := DDL(opts.Provider)
	if err != nil {
		return err
	}

	if opts.Reset {
		if err := db.Exec(ctx, DropScript()); err != nil {
			return fmt.Errorf("failed to drop tables: %w", err)
		}
	}
	if err := db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if opts.Demo {
		if err := db.Exec(ctx, DemoData()); err != nil {
			return fmt.Errorf("failed to load demo data: %w", err)
		}
	}
	return nil
}
