package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// ClientConfig satisfies the go-persistence-bun configuration contract.
type ClientConfig struct {
	Debug          bool
	Driver         string
	Server         string
	PingTimeout    time.Duration
	OtelIdentifier string
}

func (c ClientConfig) GetDebug() bool {
	return c.Debug
}

func (c ClientConfig) GetDriver() string {
	return normalizeDriver(c.Driver)
}

func (c ClientConfig) GetServer() string {
	return c.Server
}

func (c ClientConfig) GetPingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return 5 * time.Second
	}
	return c.PingTimeout
}

func (c ClientConfig) GetOtelIdentifier() string {
	if strings.TrimSpace(c.OtelIdentifier) == "" {
		return "go-service-dispatch"
	}
	return c.OtelIdentifier
}

// OpenDB opens a bun handle for sqlite3 or postgres.
func OpenDB(driver string, dsn string) (*bun.DB, error) {
	sqlDB, dialect, err := openSQL(driver, dsn)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqlDB, dialect), nil
}

// OpenClient opens a go-persistence-bun client so hosts can register SQL
// migrations and run them before building the activity store.
func OpenClient(cfg ClientConfig) (*persistence.Client, error) {
	sqlDB, dialect, err := openSQL(cfg.Driver, cfg.Server)
	if err != nil {
		return nil, err
	}
	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	return client, nil
}

// NewActivityStoreFromPersistence accepts a *bun.DB or any client exposing
// DB() *bun.DB, such as *persistence.Client.
func NewActivityStoreFromPersistence(client any, opts ...ActivityStoreOption) (*ActivityStore, error) {
	db, err := resolveBunDB(client)
	if err != nil {
		return nil, err
	}
	return NewActivityStore(db, opts...)
}

func openSQL(driver string, dsn string) (*sql.DB, schema.Dialect, error) {
	driver = normalizeDriver(driver)
	if strings.TrimSpace(dsn) == "" {
		return nil, nil, fmt.Errorf("sqlstore: dsn is required")
	}
	var dialect schema.Dialect
	switch driver {
	case DriverSQLite:
		dialect = sqlitedialect.New()
	case DriverPostgres:
		dialect = pgdialect.New()
	default:
		return nil, nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	return sqlDB, dialect, nil
}

func normalizeDriver(driver string) string {
	switch strings.TrimSpace(strings.ToLower(driver)) {
	case "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	default:
		return strings.TrimSpace(strings.ToLower(driver))
	}
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
