package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/clubsync/internal/config"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const tracedQueryLimit = 512

// openDB opens an instrumented Postgres pool and verifies it answers.
func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := config.PostgresDSN(cfg.DBURL, cfg.DBDisablePreparedBinary)
	name := databaseName(dsn)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(name),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	otelsql.ReportDBStatsMetrics(db.DB, otelsql.WithDBName(name))
	return db, nil
}

// databaseName reads the database from either a URL or a key=value DSN.
func databaseName(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		if name := strings.Trim(u.Path, "/ "); name != "" {
			return name
		}
	}
	for _, field := range strings.Fields(dsn) {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key != "dbname" {
			continue
		}
		if value = strings.Trim(value, `"'`); value != "" {
			return value
		}
	}
	return ""
}

// traceQuery collapses whitespace so span attributes stay on one line.
func traceQuery(query string) string {
	collapsed := strings.Join(strings.Fields(query), " ")
	if len(collapsed) > tracedQueryLimit {
		return collapsed[:tracedQueryLimit] + "..."
	}
	return collapsed
}
