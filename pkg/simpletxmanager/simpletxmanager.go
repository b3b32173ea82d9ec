package simpletxmanager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WidgetBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/txmanager"
)

const (
	maxAttempts    = 3
	retryBaseDelay = 25 * time.Millisecond
)

// TransactionManager вариант transaction manager поверх чистого *sql.DB
// (без обёртки метрик). Семантика совпадает с pkg/txmanager
type TransactionManager struct {
	db *sql.DB
}

// NewTransactionManager создает transaction manager поверх *sql.DB
func NewTransactionManager(db *sql.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// DoSerializable выполняет fn в SERIALIZABLE транзакции с повтором
// при конфликтах сериализации (см. pkg/txmanager)
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = m.runOnce(ctx, fn)
		if lastErr == nil {
			return nil
		}
		if !txmanager.IsRetryable(lastErr) {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBaseDelay):
		}
	}

	return fmt.Errorf("%w: %d attempts exhausted: %v", txmanager.ErrTxFailed, maxAttempts, lastErr)
}

func (m *TransactionManager) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("%w: begin: %v", txmanager.ErrTxFailed, err)
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
