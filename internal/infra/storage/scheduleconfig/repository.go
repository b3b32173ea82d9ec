package scheduleconfig

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/types"
)

// Repository репозиторий для работы с конфигурацией расписания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория конфигурации
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// dayScheduleJSON JSON-модель рабочих часов одного дня в колонке working_hours
type dayScheduleJSON struct {
	Enabled bool `json:"enabled"`
	Slots   []struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"slots"`
}

// weekScheduleJSON ключи — имена дней недели в нижнем регистре
type weekScheduleJSON map[string]dayScheduleJSON

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// GetByAccountID получает конфигурацию расписания аккаунта.
// Рабочие часы, таймзона и заблокированные даты разбираются и валидируются
// сразу при загрузке: испорченные данные — громкая ошибка, а не тихий
// пропуск слотов
func (r *Repository) GetByAccountID(ctx context.Context, accountID int64) (*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"account_id",
		"timezone",
		"locale",
		"slot_duration_minutes",
		"buffer_minutes",
		"min_advance_minutes",
		"max_advance_days",
		"max_daily_bookings",
		"working_hours",
		"blocked_dates",
		"created_at",
		"updated_at",
	).
		From("schedule_configs").
		Where(squirrel.Eq{"account_id": accountID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByAccountID - build select query: %v", ErrBuildQuery, err)
	}

	var cfg domain.ScheduleConfig
	var workingHoursRaw, blockedDatesRaw []byte
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&cfg.ID,
		&cfg.AccountID,
		&cfg.Timezone,
		&cfg.Locale,
		&cfg.SlotDurationMinutes,
		&cfg.BufferMinutes,
		&cfg.MinAdvanceMinutes,
		&cfg.MaxAdvanceDays,
		&cfg.MaxDailyBookings,
		&workingHoursRaw,
		&blockedDatesRaw,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByAccountID - scan config: %v", ErrScanRow, err)
	}

	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: account %d: unknown timezone %q", domain.ErrCorruptConfig, accountID, cfg.Timezone)
	}

	cfg.WorkingHours, err = parseWorkingHours(workingHoursRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: account %d: %v", domain.ErrCorruptConfig, accountID, err)
	}

	cfg.BlockedDates, err = parseBlockedDates(blockedDatesRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: account %d: %v", domain.ErrCorruptConfig, accountID, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// parseWorkingHours разворачивает JSONB рабочих часов в фиксированный
// массив из 7 дней недели
func parseWorkingHours(raw []byte) (domain.WeekSchedule, error) {
	var week domain.WeekSchedule

	if len(raw) == 0 {
		return week, fmt.Errorf("working_hours is empty")
	}

	var parsed weekScheduleJSON
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return week, fmt.Errorf("working_hours is not valid JSON: %v", err)
	}

	for name, day := range parsed {
		weekday, ok := weekdayNames[name]
		if !ok {
			return week, fmt.Errorf("unknown weekday key %q in working_hours", name)
		}

		ds := domain.DaySchedule{Enabled: day.Enabled}
		for _, slot := range day.Slots {
			ds.Ranges = append(ds.Ranges, domain.TimeRange{
				Start: types.TimeString(slot.Start),
				End:   types.TimeString(slot.End),
			})
		}
		week[weekday] = ds
	}

	return week, nil
}

// parseBlockedDates разворачивает JSONB массив дат YYYY-MM-DD в множество
func parseBlockedDates(raw []byte) (map[string]struct{}, error) {
	blocked := make(map[string]struct{})

	if len(raw) == 0 {
		return blocked, nil
	}

	var dates []string
	if err := json.Unmarshal(raw, &dates); err != nil {
		return nil, fmt.Errorf("blocked_dates is not valid JSON: %v", err)
	}

	for _, d := range dates {
		if _, err := time.Parse(domain.DateFormat, d); err != nil {
			return nil, fmt.Errorf("blocked date %q is not a valid date", d)
		}
		blocked[d] = struct{}{}
	}

	return blocked, nil
}
