package postgres

import (
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type testConfig struct{}

func (testConfig) GetDSN() string { return "postgres://u:p@localhost:5432/db?sslmode=disable" }

func (testConfig) PoolLimits() (int32, int32, time.Duration, time.Duration) {
	return 12, 3, time.Hour, time.Minute
}

func TestApplyPoolLimits(t *testing.T) {
	cfg, err := pgxpool.ParseConfig(testConfig{}.GetDSN())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	applyPoolLimits(cfg, testConfig{})

	if cfg.MaxConns != 12 || cfg.MinConns != 3 {
		t.Fatalf("conns = %d/%d, want 12/3", cfg.MaxConns, cfg.MinConns)
	}
	if cfg.MaxConnLifetime != time.Hour || cfg.MaxConnIdleTime != time.Minute {
		t.Fatalf("unexpected durations %v %v", cfg.MaxConnLifetime, cfg.MaxConnIdleTime)
	}
}

func TestSQLStateHelpers(t *testing.T) {
	fk := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})
	uniq := &pgconn.PgError{Code: "23505"}

	if !IsForeignKeyViolation(fk) || IsForeignKeyViolation(uniq) {
		t.Fatal("foreign key detection is wrong")
	}
	if !IsUniqueViolation(uniq) || IsUniqueViolation(nil) {
		t.Fatal("unique detection is wrong")
	}
}
