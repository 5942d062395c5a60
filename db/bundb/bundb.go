// Package bundb opens the Postgres connection shared by the league
// repositories and adapters.
package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	leagueadapters "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/adapters"
	leaguedb "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/repositories"
	"github.com/wellplay/wellplay-backend/config"
)

// DBService holds the bun handle and the repositories built on it.
type DBService struct {
	LeagueDB leaguedb.Repository
	db       *bun.DB
}

// GetDB returns the underlying database connection pool.
func (dbService *DBService) GetDB() *bun.DB {
	return dbService.db
}

// Close closes the connection pool.
func (dbService *DBService) Close() error {
	return dbService.db.Close()
}

// NewBunDBService initializes a new DBService with the provided Postgres configuration.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*DBService, error) {
	logger.InfoContext(ctx, "Initializing database connection")

	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	dbService := NewTestDBService(BunDB(sqldb))
	logger.InfoContext(ctx, "Database connection ready")
	return dbService, nil
}

// NewTestDBService wraps an already open bun.DB.
func NewTestDBService(db *bun.DB) *DBService {
	db.RegisterModel(
		(*leaguedb.Tier)(nil),
		(*leaguedb.CompanyTier)(nil),
		(*leaguedb.Cohort)(nil),
		(*leaguedb.Membership)(nil),
		(*leaguedb.RewardStamp)(nil),
		(*leagueadapters.User)(nil),
		(*leagueadapters.GemLedgerEntry)(nil),
		(*leagueadapters.Notification)(nil),
	)
	return &DBService{
		LeagueDB: leaguedb.NewRepository(db),
		db:       db,
	}
}

// BunDB returns a new bun.DB for given sql.DB connection pool.
func BunDB(sqldb *sql.DB) *bun.DB {
	return bun.NewDB(sqldb, pgdialect.New())
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	sqldb.SetMaxOpenConns(25)
	sqldb.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
