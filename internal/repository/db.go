package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/minhlq/resume-ocr/internal/common"
)

// Open connects the history store. A postgres:// DSN goes through pgx;
// anything else is treated as a sqlite file path. Returns the handle and
// the driver name (the repository needs it for placeholder syntax).
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*sql.DB, string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	driver := "sqlite"
	dsn := cfg.DSN
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
	}

	logger.Info("connecting to history store", "driver", driver)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		logger.Error("failed to open history store", "driver", driver, "error", err)
		return nil, "", fmt.Errorf("open %s: %w", driver, err)
	}

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		logger.Error("history store ping failed", "driver", driver, "error", err)
		return nil, "", fmt.Errorf("ping %s: %w", driver, err)
	}

	logger.Info("history store connected", "driver", driver)
	return db, driver, nil
}

// HealthCheck pings the store, bounded by timeout when positive.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration, logger *slog.Logger) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		logger.Error("history store ping failed", "error", err)
		return err
	}
	logger.Debug("history store ping successful")
	return nil
}

// rebind rewrites ?-placeholders to $n for postgres. Queries in this
// package are written with ? and rebound per driver.
func rebind(driver, query string) string {
	if driver != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
