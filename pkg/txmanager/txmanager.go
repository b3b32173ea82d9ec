package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-WidgetBookingService/pkg/dbmetrics"
)

const (
	// maxAttempts максимальное количество попыток выполнения транзакции
	// при конфликтах сериализации
	maxAttempts = 3

	// retryBaseDelay базовая задержка между попытками (растет линейно)
	retryBaseDelay = 25 * time.Millisecond
)

// Коды ошибок PostgreSQL, при которых транзакцию безопасно повторить целиком
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// ErrTxFailed возвращается, когда транзакция не удалась после всех попыток
var ErrTxFailed = errors.New("txmanager: transaction failed")

// TxBeginner интерфейс для начала транзакций (реализуется *dbmetrics.DB)
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager выполняет функции в сериализуемых транзакциях
// с повтором при конфликтах сериализации
type TransactionManager struct {
	db TxBeginner
}

// NewTransactionManager создает новый transaction manager
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// DoSerializable выполняет fn в транзакции с уровнем изоляции SERIALIZABLE.
// Транзакция кладется в контекст (dbmetrics.WithTx), репозитории автоматически
// выполняют запросы внутри неё.
//
// При ошибках сериализации (40001) и deadlock (40P01) повторяется ВСЯ функция,
// а не только последний запрос: до maxAttempts попыток с линейным backoff.
// Любая другая ошибка возвращается сразу.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = m.runOnce(ctx, fn)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBaseDelay):
		}
	}

	return fmt.Errorf("%w: %d attempts exhausted: %v", ErrTxFailed, maxAttempts, lastErr)
}

func (m *TransactionManager) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrTxFailed, err)
	}

	txCtx := dbmetrics.WithTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// IsRetryable возвращает true для ошибок, при которых транзакцию
// безопасно повторить целиком
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		return code == pgSerializationFailure || code == pgDeadlockDetected
	}
	return false
}
