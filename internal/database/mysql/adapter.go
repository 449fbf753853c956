package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/transit-studio/internal/database/common"
	driver "github.com/go-sql-driver/mysql"
)

type Adapter struct {
	common.SQLAdapter
	dbName string
}

var typeMap = map[string]string{
	"varchar": "VARCHAR", "char": "CHAR",
	"text": "TEXT", "longtext": "TEXT", "mediumtext": "TEXT", "tinytext": "TEXT",
	"int": "INT", "integer": "INT", "bigint": "BIGINT", "smallint": "SMALLINT", "tinyint": "TINYINT", "mediumint": "INT",
	"boolean": "BOOLEAN", "bool": "BOOLEAN",
	"datetime": "DATETIME", "timestamp": "TIMESTAMP", "date": "DATE", "time": "TIME",
	"decimal": "DECIMAL", "numeric": "DECIMAL", "float": "FLOAT", "double": "DOUBLE",
	"json": "JSON", "blob": "BLOB", "binary": "BINARY", "varbinary": "VARBINARY",
}

func New() *Adapter {
	return &Adapter{
		SQLAdapter: common.SQLAdapter{
			Dialect: common.Dialect{
				Placeholder: squirrel.Question,
				Quote:       quoteIdentifier,
				TextType:    "CHAR",
				Like:        "LIKE",
			},
		},
	}
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// toDSN accepts either a driver DSN or a mysql:// URL.
func toDSN(url string) string {
	if !strings.HasPrefix(url, "mysql://") {
		return url
	}
	dsn := strings.TrimPrefix(url, "mysql://")
	atIndex := strings.LastIndex(dsn, "@")
	if atIndex < 0 {
		return dsn
	}
	credentials, remainder := dsn[:atIndex], dsn[atIndex+1:]
	slashIndex := strings.Index(remainder, "/")
	if slashIndex < 0 {
		return fmt.Sprintf("%s@tcp(%s)/", credentials, remainder)
	}
	hostPort, dbAndParams := remainder[:slashIndex], remainder[slashIndex+1:]
	dbAndParams = strings.ReplaceAll(dbAndParams, "sslmode=require", "tls=skip-verify")
	dbAndParams = strings.ReplaceAll(dbAndParams, "sslmode=disable", "tls=false")
	return fmt.Sprintf("%s@tcp(%s)/%s", credentials, hostPort, dbAndParams)
}

func (m *Adapter) Connect(ctx context.Context, url string) error {
	cfg, err := driver.ParseDSN(toDSN(url))
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}
	// Updates that rewrite identical values must still count as a match.
	cfg.ClientFoundRows = true
	cfg.ParseTime = true
	m.dbName = cfg.DBName

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping MySQL: %w", err)
	}

	m.DB = db
	return nil
}

func (m *Adapter) MapColumnType(dataType, columnType string) string {
	if strings.EqualFold(columnType, "tinyint(1)") {
		return "BOOLEAN"
	}
	if mapped, ok := typeMap[strings.ToLower(dataType)]; ok {
		return mapped
	}
	return strings.ToUpper(dataType)
}
