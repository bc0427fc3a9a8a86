package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"aufgussplan/internal/config"
	"aufgussplan/internal/logger"

	_ "github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/mysqldialect"
)

const maxConnectAttempts = 5

// Open connects to MySQL, retrying while the server comes up, and wraps the
// pool in bun.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	var sqldb *sql.DB
	var err error

	for i := 0; i < maxConnectAttempts; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to MySQL %s:%s (attempt %d/%d)", cfg.Host, cfg.Port, i+1, maxConnectAttempts))
		sqldb, err = sql.Open("mysql", cfg.DSN())
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = sqldb.PingContext(pingCtx)
			cancel()
			if err == nil {
				break
			}
			sqldb.Close()
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to MySQL: %v", err))
		if i < maxConnectAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to mysql after %d attempts: %w", maxConnectAttempts, err)
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "MySQL connection successful")
	return bun.NewDB(sqldb, mysqldialect.New()), nil
}

// NullSafeEq returns the comparison operator that treats NULL = NULL as true.
func NullSafeEq(db bun.IDB) string {
	if db.Dialect().Name() == dialect.MySQL {
		return "<=>"
	}
	return "IS"
}

// IsMySQL reports whether db talks to MySQL.
func IsMySQL(db bun.IDB) bool {
	return db.Dialect().Name() == dialect.MySQL
}
