package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/psqlbuilder"
)

// bookingColumns полный набор колонок таблицы bookings в порядке сканирования
var bookingColumns = []string{
	"id",
	"account_id",
	"booking_reference",
	"customer_first_name",
	"customer_last_name",
	"customer_phone",
	"customer_notes",
	"appointment_start",
	"duration_minutes",
	"status",
	"customer_ip",
	"customer_agent",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование со статусом active.
// Если в контексте есть активная транзакция (см. pkg/txmanager), запрос
// выполняется внутри неё — так вставка фиксируется атомарно с проверкой
// пересечений, выполненной той же транзакцией
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"account_id",
			"booking_reference",
			"customer_first_name",
			"customer_last_name",
			"customer_phone",
			"customer_notes",
			"appointment_start",
			"duration_minutes",
			"status",
			"customer_ip",
			"customer_agent",
		).
		Values(
			b.AccountID,
			b.Reference,
			b.CustomerFirstName,
			b.CustomerLastName,
			b.CustomerPhone,
			b.CustomerNotes,
			b.AppointmentStart,
			b.DurationMinutes,
			b.Status,
			b.CustomerIP,
			b.CustomerAgent,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByReference получает бронирование по клиентскому референсу
func (r *Repository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"booking_reference": reference}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByReference - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByReference - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}

// ListActiveInRange получает активные бронирования аккаунта, чей интервал
// [appointment_start, appointment_start+duration) пересекает [from, to).
//
// Внутри транзакции добавляется FOR UPDATE: конкурентные резервации того же
// аккаунта блокируются на конфликтующих строках до конца транзакции
func (r *Repository) ListActiveInRange(ctx context.Context, accountID int64, from, to time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{
			"account_id": accountID,
			"status":     domain.StatusActive,
		}).
		Where(squirrel.Expr("appointment_start < ?", to)).
		Where(squirrel.Expr("appointment_start + duration_minutes * interval '1 minute' > ?", from)).
		OrderBy("appointment_start ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveInRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// CountActiveBetween считает активные бронирования аккаунта с началом
// в интервале [from, to). Используется для дневного лимита
func (r *Repository) CountActiveBetween(ctx context.Context, accountID int64, from, to time.Time) (int, error) {
	return r.count(ctx, "CountActiveBetween", squirrel.And{
		squirrel.Eq{"account_id": accountID, "status": domain.StatusActive},
		squirrel.GtOrEq{"appointment_start": from},
		squirrel.Lt{"appointment_start": to},
	})
}

// CountActiveCreatedBetween считает активные бронирования аккаунта,
// СОЗДАННЫЕ в интервале [from, to) (по created_at, не по дате визита).
// Используется для месячного лимита тарифа
func (r *Repository) CountActiveCreatedBetween(ctx context.Context, accountID int64, from, to time.Time) (int, error) {
	return r.count(ctx, "CountActiveCreatedBetween", squirrel.And{
		squirrel.Eq{"account_id": accountID, "status": domain.StatusActive},
		squirrel.GtOrEq{"created_at": from},
		squirrel.Lt{"created_at": to},
	})
}

// CountRecentAttemptsByIP считает попытки бронирования с одного адреса
// на аккаунт начиная с since (включая отмененные — учитывается сам факт
// попытки). Основа троттлинга публичного эндпоинта
func (r *Repository) CountRecentAttemptsByIP(ctx context.Context, accountID int64, ip string, since time.Time) (int, error) {
	return r.count(ctx, "CountRecentAttemptsByIP", squirrel.And{
		squirrel.Eq{"account_id": accountID, "customer_ip": ip},
		squirrel.GtOrEq{"created_at": since},
	})
}

func (r *Repository) count(ctx context.Context, op string, where squirrel.Sqlizer) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(where).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	var n int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %s - scan count: %v", ErrScanRow, op, err)
	}

	return n, nil
}

// Cancel переводит активное бронирование в cancelled, фиксируя момент
// и причину отмены. Если активной записи нет (уже отменена), возвращает
// ErrNotCancellable — cancelled_at первой отмены не перезаписывается
func (r *Repository) Cancel(ctx context.Context, id int64, reason *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":     id,
			"status": domain.StatusActive,
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrNotCancellable
	}

	return nil
}

// GetByAccountWithFilter получает бронирования аккаунта с фильтрацией
// по статусу и периоду, с пагинацией. Используется владельцем аккаунта
func (r *Repository) GetByAccountWithFilter(ctx context.Context, filter domain.AccountBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"account_id": filter.AccountID}).
		OrderBy("appointment_start ASC").
		Limit(uint64(limit)).
		Offset(uint64(filter.Offset))

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"appointment_start": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"appointment_start": *filter.EndDate})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByAccountWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByAccountWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetStats считает агрегированную статистику бронирований аккаунта
// одним запросом (FILTER-агрегаты PostgreSQL)
func (r *Repository) GetStats(ctx context.Context, accountID int64, now time.Time) (*domain.BookingStats, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		Column("COUNT(*) FILTER (WHERE status = 'active')").
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE created_at >= ? AND created_at < ?)", monthStart, monthEnd)).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE status = 'active' AND appointment_start >= ?)", now)).
		From("bookings").
		Where(squirrel.Eq{"account_id": accountID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetStats - build select query: %v", ErrBuildQuery, err)
	}

	var stats domain.BookingStats
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&stats.TotalBookings,
		&stats.ActiveBookings,
		&stats.BookingsThisMonth,
		&stats.UpcomingBookings,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: GetStats - scan stats: %v", ErrScanRow, err)
	}

	return &stats, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.AccountID,
		&b.Reference,
		&b.CustomerFirstName,
		&b.CustomerLastName,
		&b.CustomerPhone,
		&b.CustomerNotes,
		&b.AppointmentStart,
		&b.DurationMinutes,
		&b.Status,
		&b.CustomerIP,
		&b.CustomerAgent,
		&b.CancellationReason,
		&b.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
