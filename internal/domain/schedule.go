package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-WidgetBookingService/pkg/types"
)

// TimeRange один интервал рабочего времени внутри дня, например 09:00-13:00
type TimeRange struct {
	Start types.TimeString
	End   types.TimeString
}

// Validate проверяет формат границ и что start строго раньше end
func (r TimeRange) Validate() error {
	if err := r.Start.Validate(); err != nil {
		return err
	}
	if err := r.End.Validate(); err != nil {
		return err
	}
	if !r.Start.IsBefore(r.End) {
		return fmt.Errorf("%w: range %s-%s", ErrInvalidTimeRange, r.Start, r.End)
	}
	return nil
}

// DaySchedule расписание одного дня недели
type DaySchedule struct {
	Enabled bool
	Ranges  []TimeRange
}

// WeekSchedule расписание недели: фиксированный массив из 7 дней,
// индексированный time.Weekday (Sunday = 0).
// Валидируется целиком при загрузке конфигурации, а не при генерации слотов
type WeekSchedule [7]DaySchedule

// ForDate возвращает расписание дня недели для указанной даты
func (w WeekSchedule) ForDate(date time.Time) DaySchedule {
	return w[date.Weekday()]
}

// Validate проверяет все включенные дни недели
func (w WeekSchedule) Validate() error {
	for day := time.Sunday; day <= time.Saturday; day++ {
		ds := w[day]
		if !ds.Enabled {
			continue
		}
		for _, r := range ds.Ranges {
			if err := r.Validate(); err != nil {
				return fmt.Errorf("%s: %w", day, err)
			}
		}
	}
	return nil
}

// ScheduleConfig политика бронирования аккаунта (1:1 с Account)
// Read-only с точки зрения движка: мутируется только владельцем
// через интерфейсы дашборда
type ScheduleConfig struct {
	ID        int64
	AccountID int64

	Timezone string
	// Location загружается из Timezone при чтении конфигурации;
	// вся арифметика времени суток выполняется в нём
	Location *time.Location
	Locale   string

	SlotDurationMinutes int // > 0
	BufferMinutes       int // >= 0, вставляется между соседними слотами
	MinAdvanceMinutes   int // насколько рано может начаться слот относительно "сейчас"
	MaxAdvanceDays      int // насколько далеко в будущее разрешены бронирования
	MaxDailyBookings    int // > 0

	WorkingHours WeekSchedule

	// BlockedDates даты в формате YYYY-MM-DD, полностью исключенные
	// независимо от рабочих часов
	BlockedDates map[string]struct{}

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDateBlocked возвращает true, если дата полностью закрыта для бронирования
func (c *ScheduleConfig) IsDateBlocked(date time.Time) bool {
	_, blocked := c.BlockedDates[date.In(c.Location).Format(DateFormat)]
	return blocked
}

// EarliestStart возвращает самый ранний допустимый момент начала слота
func (c *ScheduleConfig) EarliestStart(now time.Time) time.Time {
	return now.Add(time.Duration(c.MinAdvanceMinutes) * time.Minute)
}

// LatestStart возвращает самый поздний допустимый момент начала слота
// (максимум отсчитывается календарными днями, не минутами)
func (c *ScheduleConfig) LatestStart(now time.Time) time.Time {
	return now.AddDate(0, 0, c.MaxAdvanceDays)
}

// SlotDuration длительность слота как time.Duration
func (c *ScheduleConfig) SlotDuration() time.Duration {
	return time.Duration(c.SlotDurationMinutes) * time.Minute
}

// Validate проверяет целостность конфигурации. Нарушение означает
// испорченные данные в хранилище и должно приводить к громкой ошибке,
// а не к тихому пропуску слотов
func (c *ScheduleConfig) Validate() error {
	if c.Location == nil {
		return fmt.Errorf("%w: timezone %q not loaded", ErrCorruptConfig, c.Timezone)
	}
	if c.SlotDurationMinutes <= 0 {
		return fmt.Errorf("%w: slot duration must be positive, got %d", ErrCorruptConfig, c.SlotDurationMinutes)
	}
	if c.BufferMinutes < 0 {
		return fmt.Errorf("%w: buffer must be non-negative, got %d", ErrCorruptConfig, c.BufferMinutes)
	}
	if c.MaxDailyBookings <= 0 {
		return fmt.Errorf("%w: max daily bookings must be positive, got %d", ErrCorruptConfig, c.MaxDailyBookings)
	}
	if err := c.WorkingHours.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptConfig, err)
	}
	return nil
}
