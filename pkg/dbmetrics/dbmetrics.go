package dbmetrics

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/m04kA/SMC-WidgetBookingService/pkg/metrics"
)

// DBExecutor минимальный интерфейс для выполнения запросов
// Реализуется *sql.DB, *sql.Tx, *dbmetrics.DB и *dbmetrics.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TxExecutor интерфейс транзакции
type TxExecutor interface {
	DBExecutor
	Commit() error
	Rollback() error
}

type ctxKey struct{}

// WithTx кладет активную транзакцию в контекст
// Репозитории достают её через GetExecutor и выполняют запросы внутри транзакции
func WithTx(ctx context.Context, tx TxExecutor) context.Context {
	return context.WithValue(ctx, ctxKey{}, tx)
}

// GetExecutor возвращает транзакцию из контекста, если она есть, иначе fallback
func GetExecutor(ctx context.Context, fallback DBExecutor) DBExecutor {
	if tx, ok := ctx.Value(ctxKey{}).(TxExecutor); ok {
		return tx
	}
	return fallback
}

// IsInTransaction возвращает true, если в контексте есть активная транзакция
func IsInTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(ctxKey{}).(TxExecutor)
	return ok
}

// DB обёртка над *sql.DB, записывающая метрики каждого запроса
type DB struct {
	db      *sql.DB
	metrics *metrics.Metrics
}

// Wrap оборачивает соединение с БД сбором метрик запросов
func Wrap(db *sql.DB, m *metrics.Metrics) *DB {
	return &DB{db: db, metrics: m}
}

// WrapWithDefault оборачивает соединение и запускает сбор статистики пула
// каждые 10 секунд до закрытия stopCh
func WrapWithDefault(db *sql.DB, m *metrics.Metrics, serviceName string, stopCh <-chan struct{}) *DB {
	wrapped := Wrap(db, m)
	go wrapped.collectPoolStats(10*time.Second, stopCh)
	return wrapped
}

func (d *DB) collectPoolStats(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			stats := d.db.Stats()
			d.metrics.DBPoolOpenConnections.Set(float64(stats.OpenConnections))
			d.metrics.DBPoolInUse.Set(float64(stats.InUse))
			d.metrics.DBPoolIdle.Set(float64(stats.Idle))
			d.metrics.DBPoolWaitCount.Set(float64(stats.WaitCount))
		}
	}
}

// operation определяет тип запроса по первому ключевому слову
func operation(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}

func (d *DB) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	d.metrics.DBQueriesTotal.WithLabelValues(op, status).Inc()
	d.metrics.DBQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ExecContext выполняет запрос без результата, записывая метрики
func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := d.db.ExecContext(ctx, query, args...)
	d.observe(operation(query), start, err)
	return res, err
}

// QueryContext выполняет запрос с результатом, записывая метрики
func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	d.observe(operation(query), start, err)
	return rows, err
}

// QueryRowContext выполняет запрос одной строки, записывая метрики
// Ошибка выполнения откладывается до Scan, поэтому статус здесь всегда ok
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := d.db.QueryRowContext(ctx, query, args...)
	d.observe(operation(query), start, nil)
	return row
}

// BeginTx начинает транзакцию; её запросы тоже попадают в метрики
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, parent: d}, nil
}

// Tx обёртка над *sql.Tx с метриками
type Tx struct {
	tx     *sql.Tx
	parent *DB
}

// ExecContext выполняет запрос внутри транзакции
func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := t.tx.ExecContext(ctx, query, args...)
	t.parent.observe(operation(query), start, err)
	return res, err
}

// QueryContext выполняет запрос внутри транзакции
func (t *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.tx.QueryContext(ctx, query, args...)
	t.parent.observe(operation(query), start, err)
	return rows, err
}

// QueryRowContext выполняет запрос одной строки внутри транзакции
func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := t.tx.QueryRowContext(ctx, query, args...)
	t.parent.observe(operation(query), start, nil)
	return row
}

// Commit фиксирует транзакцию
func (t *Tx) Commit() error { return t.tx.Commit() }

// Rollback откатывает транзакцию
func (t *Tx) Rollback() error { return t.tx.Rollback() }
