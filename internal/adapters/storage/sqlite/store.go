// Package sqlite implements the todo record store on an embedded SQLite
// database using sqlx over the pure-Go modernc.org/sqlite driver.
//
// Every store call runs through a circuit breaker: when the database starts
// failing persistently (disk gone, file locked beyond the busy timeout),
// the breaker opens and callers fail fast with domain.ErrUnavailable instead
// of queueing up behind a broken store. Row-level not-found outcomes are not
// failures and never trip the breaker.
package sqlite

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/metric"
	sqlite "modernc.org/sqlite"

	"github.com/jsamuelsen11/todo-api/internal/domain"
	"github.com/jsamuelsen11/todo-api/internal/platform/config"
	"github.com/jsamuelsen11/todo-api/internal/platform/telemetry"
	"github.com/jsamuelsen11/todo-api/internal/ports"
)

// SQLite's built-in lower() folds A-Z only, so a Unicode-aware fold has to
// come from the Go side for search to treat "ÉCLAIR" and "éclair" as the
// same text. Registered once per process for every connection the driver
// opens.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("unicode_lower", 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			case nil:
				return nil, nil
			default:
				return nil, fmt.Errorf("unicode_lower: unsupported argument type %T", v)
			}
		})
}

// Compile-time interface checks.
var (
	_ ports.TodoStore     = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// Store is the SQLite-backed record store for the todo collection.
type Store struct {
	db      *sqlx.DB
	breaker *gobreaker.CircuitBreaker[any]
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// New opens (or creates) the SQLite database at cfg.Path, enables WAL mode,
// and applies any pending schema migrations.
//
// If metrics is nil, metric recording is skipped.
func New(cfg *config.StorageConfig, metrics *telemetry.Metrics, logger *slog.Logger) (*Store, error) {
	db, err := sqlx.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// WAL allows concurrent readers during a write; the busy timeout covers
	// the single-writer lock contention window.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.BusyTimeout.Milliseconds()),
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}

	s := &Store{
		db:      db,
		breaker: newBreaker(cfg, logger),
		metrics: metrics,
		logger:  logger,
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "sqlite"
}

// HealthCheck implements ports.HealthChecker by pinging the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping: %w", err)
	}
	return nil
}

// newBreaker builds the circuit breaker guarding store calls. Only
// infrastructure failures count toward tripping it; not-found is a normal
// outcome.
func newBreaker(cfg *config.StorageConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "sqlite",
		MaxRequests: toUint32(cfg.CircuitBreaker.HalfOpenLimit),
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.CircuitBreaker.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *Store) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
		s.logger.Info("applied schema migration", slog.Int("version", m.version))
	}

	return nil
}

// execute runs a store operation through the circuit breaker and records
// operation metrics. Breaker rejections surface as domain.ErrUnavailable.
func execute[T any](ctx context.Context, s *Store, op string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()

	v, err := s.breaker.Execute(func() (any, error) {
		return fn(ctx)
	})

	s.recordMetrics(ctx, op, start, err)

	var zero T
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
		}
		return zero, err
	}

	result, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", op, v)
	}
	return result, nil
}

// unavailable wraps an infrastructure-level database error so that callers
// can match it with errors.Is(err, domain.ErrUnavailable).
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
}

// recordMetrics records store operation duration and count. Safe with nil
// metrics.
func (s *Store) recordMetrics(ctx context.Context, op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}

	result := "success"
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		result = "error"
	}

	attrs := metric.WithAttributes(
		telemetry.AttrStoreOperation.String(op),
		telemetry.AttrResult.String(result),
	)
	s.metrics.StoreRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	s.metrics.StoreRequestTotal.Add(ctx, 1, attrs)
}

// toUint32 clamps an int config value into uint32 range.
func toUint32(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}
