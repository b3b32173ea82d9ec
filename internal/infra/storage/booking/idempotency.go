package booking

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/psqlbuilder"
)

// LockIdempotencyKey захватывает ключ идемпотентности внутри текущей
// транзакции. Вставляет ключ, если его ещё нет, и блокирует строку
// (FOR UPDATE) до конца транзакции — конкурентный повтор того же запроса
// будет ждать и увидит финализированный результат.
//
// Возвращает ID бронирования, если ключ уже финализирован предыдущей
// успешной попыткой, иначе nil
func (r *Repository) LockIdempotencyKey(ctx context.Context, accountID int64, key string) (*int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertQuery, args, err := psqlbuilder.Insert("booking_idempotency_keys").
		Columns("account_id", "idempotency_key").
		Values(accountID, key).
		Suffix("ON CONFLICT (account_id, idempotency_key) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: LockIdempotencyKey - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, insertQuery, args...); err != nil {
		return nil, fmt.Errorf("%w: LockIdempotencyKey - execute insert: %v", ErrExecQuery, err)
	}

	selectQuery, args, err := psqlbuilder.Select("booking_id").
		From("booking_idempotency_keys").
		Where(squirrel.Eq{"account_id": accountID, "idempotency_key": key}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: LockIdempotencyKey - build select query: %v", ErrBuildQuery, err)
	}

	var bookingID sql.NullInt64
	if err := executor.QueryRowContext(ctx, selectQuery, args...).Scan(&bookingID); err != nil {
		return nil, fmt.Errorf("%w: LockIdempotencyKey - scan key: %v", ErrScanRow, err)
	}

	if !bookingID.Valid {
		return nil, nil
	}
	return &bookingID.Int64, nil
}

// FinalizeIdempotencyKey привязывает созданное бронирование к ключу.
// Вызывается в той же транзакции, что и вставка бронирования
func (r *Repository) FinalizeIdempotencyKey(ctx context.Context, accountID int64, key string, bookingID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_idempotency_keys").
		Set("booking_id", bookingID).
		Where(squirrel.Eq{"account_id": accountID, "idempotency_key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: FinalizeIdempotencyKey - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: FinalizeIdempotencyKey - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByID получает бронирование по внутреннему ID
// Используется для воспроизведения результата по ключу идемпотентности
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}
