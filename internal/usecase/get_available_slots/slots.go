package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
)

// generateSlots разворачивает конфигурацию расписания в список кандидатов
// на бронирование в диапазоне дат [rangeStart, rangeEnd] (обе даты
// включительно, интерпретируются в таймзоне конфигурации).
//
// Чистая функция от (config, rangeStart, rangeEnd, now): повторный вызов
// с теми же аргументами дает идентичный результат.
//
// Алгоритм:
//  1. earliest = now + minAdvanceMinutes; latest = now + maxAdvanceDays
//     (календарные дни, не минуты)
//  2. обход дат от max(rangeStart, сегодня) до min(rangeEnd, latest)
//  3. заблокированные даты и даты целиком раньше дня earliest пропускаются
//  4. выключенные дни недели и дни без интервалов пропускаются
//  5. внутри интервала курсор шагает на slotDuration + buffer;
//     слот эмитится, пока его конец не выходит за границу интервала.
//     Буфер действует только между слотами одного интервала: следующий
//     интервал того же дня начинается заново с его start
//  6. слот эмитится, только если его начало >= earliest
func generateSlots(cfg *domain.ScheduleConfig, rangeStart, rangeEnd, now time.Time) ([]domain.AvailableSlot, error) {
	loc := cfg.Location

	earliest := cfg.EarliestStart(now)
	latest := cfg.LatestStart(now)

	day := civilDay(rangeStart, loc)
	if today := startOfDay(now, loc); day.Before(today) {
		day = today
	}

	lastDay := civilDay(rangeEnd, loc)
	if latestDay := startOfDay(latest, loc); lastDay.After(latestDay) {
		lastDay = latestDay
	}

	earliestDay := startOfDay(earliest, loc)
	step := time.Duration(cfg.SlotDurationMinutes+cfg.BufferMinutes) * time.Minute

	slots := make([]domain.AvailableSlot, 0)

	for ; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		if cfg.IsDateBlocked(day) {
			continue
		}
		if day.Before(earliestDay) {
			continue
		}

		daySchedule := cfg.WorkingHours.ForDate(day)
		if !daySchedule.Enabled || len(daySchedule.Ranges) == 0 {
			continue
		}

		for _, r := range daySchedule.Ranges {
			cursor, err := r.Start.At(day, loc)
			if err != nil {
				return nil, err
			}
			rangeEndInstant, err := r.End.At(day, loc)
			if err != nil {
				return nil, err
			}

			for !cursor.Add(cfg.SlotDuration()).After(rangeEndInstant) {
				if !cursor.Before(earliest) {
					slots = append(slots, domain.AvailableSlot{
						Start:           cursor,
						DurationMinutes: cfg.SlotDurationMinutes,
					})
				}
				cursor = cursor.Add(step)
			}
		}
	}

	return slots, nil
}

// filterAvailable убирает кандидатов, пересекающихся с активными
// бронированиями. Полуоткрытые интервалы: слоты, примыкающие к бронированию
// встык, остаются доступными
func filterAvailable(slots []domain.AvailableSlot, bookings []*domain.Booking) []domain.AvailableSlot {
	available := make([]domain.AvailableSlot, 0, len(slots))

	for _, slot := range slots {
		conflict := false
		for _, b := range bookings {
			if slot.OverlapsBooking(b) {
				conflict = true
				break
			}
		}
		if !conflict {
			available = append(available, slot)
		}
	}

	return available
}

// startOfDay обнуляет время суток инстанта в указанной таймзоне
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// civilDay интерпретирует значение как календарную дату: год, месяц и день
// берутся как есть, без конвертации инстанта. Даты запроса парсятся в UTC;
// In() сдвинул бы их на день назад для таймзон западнее UTC
func civilDay(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
