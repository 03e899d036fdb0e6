// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/coursemart/internal/backend"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	delays []time.Duration
}

var _ backend.Client = (*PostgresRepository)(nil)

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{
		pool:   pool,
		delays: []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second},
	}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error

	for i := 0; i <= len(r.delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if !isRetryable(err) || i == len(r.delays) {
			break
		}

		timer := time.NewTimer(r.delays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}
	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// FindOne возвращает первую запись таблицы, удовлетворяющую условию.
func (r *PostgresRepository) FindOne(ctx context.Context, table backend.Table, where backend.Predicate) (backend.Row, error) {
	query, args, err := buildSelect(table, where, backend.Order{Limit: 1})
	if err != nil {
		return nil, err
	}

	var rows []backend.Row
	err = r.withRetry(ctx, func() error {
		var qErr error
		rows, qErr = r.query(ctx, query, args...)
		return qErr
	})
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}

	if len(rows) == 0 {
		return nil, backend.ErrNoRecord
	}
	return rows[0], nil
}

// FindAll возвращает записи таблицы, удовлетворяющие условию, в заданном порядке.
func (r *PostgresRepository) FindAll(ctx context.Context, table backend.Table, where backend.Predicate, order backend.Order) ([]backend.Row, error) {
	query, args, err := buildSelect(table, where, order)
	if err != nil {
		return nil, err
	}

	var rows []backend.Row
	err = r.withRetry(ctx, func() error {
		var qErr error
		rows, qErr = r.query(ctx, query, args...)
		return qErr
	})
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}

	return rows, nil
}

// Insert добавляет запись в таблицу. Нарушение уникальности возвращается как backend.ErrDuplicate,
// нарушение внешнего ключа как backend.ErrMissingReference.
func (r *PostgresRepository) Insert(ctx context.Context, table backend.Table, row backend.Row) error {
	query, args, err := buildInsert(table, row)
	if err != nil {
		return err
	}

	err = r.withRetry(ctx, func() error {
		_, execErr := r.pool.Exec(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return insertError(table, err)
	}

	return nil
}

func insertError(table backend.Table, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", backend.ErrDuplicate, pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s", backend.ErrMissingReference, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("insert into %s: %w", table, err)
}

// CallRemoteProcedure вызывает хранимую функцию с именованными параметрами.
func (r *PostgresRepository) CallRemoteProcedure(ctx context.Context, name string, params map[string]any) ([]backend.Row, error) {
	query, args, err := buildCall(name, params)
	if err != nil {
		return nil, err
	}

	var rows []backend.Row
	err = r.withRetry(ctx, func() error {
		var qErr error
		rows, qErr = r.query(ctx, query, args...)
		return qErr
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}

	return rows, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]backend.Row, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}

	res := make([]backend.Row, 0, len(maps))
	for _, m := range maps {
		row := make(backend.Row, len(m))
		for k, v := range m {
			row[k] = normalize(v)
		}
		res = append(res, row)
	}
	return res, nil
}

// normalize приводит значения pgx к типам, с которыми работают сервисы.
func normalize(v any) any {
	switch val := v.(type) {
	case [16]byte:
		return uuid.UUID(val).String()
	case pgtype.Numeric:
		dv, err := val.Value()
		if err != nil || dv == nil {
			return decimal.Zero
		}
		s, ok := dv.(string)
		if !ok {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	case int32:
		return int(val)
	case int64:
		return int(val)
	default:
		return v
	}
}
