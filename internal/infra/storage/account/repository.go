package account

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с аккаунтами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория аккаунтов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByWidgetID получает аккаунт по публичному идентификатору виджета
// Используется публичными эндпоинтами без аутентификации
func (r *Repository) GetByWidgetID(ctx context.Context, widgetID string) (*domain.Account, error) {
	return r.getByColumn(ctx, squirrel.Eq{"widget_id": widgetID})
}

// GetByID получает аккаунт по внутреннему идентификатору
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.getByColumn(ctx, squirrel.Eq{"id": id})
}

func (r *Repository) getByColumn(ctx context.Context, where squirrel.Eq) (*domain.Account, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"widget_id",
		"owner_name",
		"owner_email",
		"owner_phone",
		"plan",
		"max_bookings_per_month",
		"created_at",
		"updated_at",
	).
		From("accounts").
		Where(where).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getByColumn - build select query: %v", ErrBuildQuery, err)
	}

	var acc domain.Account
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&acc.ID,
		&acc.WidgetID,
		&acc.OwnerName,
		&acc.OwnerEmail,
		&acc.OwnerPhone,
		&acc.Plan,
		&acc.MaxBookingsPerMonth,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getByColumn - scan account: %v", ErrScanRow, err)
	}

	acc.CreatedAt = createdAt.Time
	acc.UpdatedAt = updatedAt.Time

	return &acc, nil
}
