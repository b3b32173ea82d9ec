package get_available_slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
)

// monday = 2025-10-20 (понедельник)
var monday = time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)

func slotsConfig() *domain.ScheduleConfig {
	var week domain.WeekSchedule
	week[time.Monday] = domain.DaySchedule{
		Enabled: true,
		Ranges:  []domain.TimeRange{{Start: "09:00", End: "11:00"}},
	}

	return &domain.ScheduleConfig{
		AccountID:           1,
		Timezone:            "UTC",
		Location:            time.UTC,
		SlotDurationMinutes: 30,
		BufferMinutes:       0,
		MinAdvanceMinutes:   60,
		MaxAdvanceDays:      30,
		MaxDailyBookings:    8,
		WorkingHours:        week,
		BlockedDates:        map[string]struct{}{},
	}
}

func slotStarts(slots []domain.AvailableSlot) []time.Time {
	starts := make([]time.Time, len(slots))
	for i, s := range slots {
		starts[i] = s.Start
	}
	return starts
}

func TestGenerateSlots_Basic(t *testing.T) {
	cfg := slotsConfig()
	now := monday.AddDate(0, 0, -1).Add(12 * time.Hour) // воскресенье 12:00

	slots, err := generateSlots(cfg, monday, monday, now)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		monday.Add(9 * time.Hour),
		monday.Add(9*time.Hour + 30*time.Minute),
		monday.Add(10 * time.Hour),
		monday.Add(10*time.Hour + 30*time.Minute),
	}, slotStarts(slots))
}

func TestGenerateSlots_Buffer(t *testing.T) {
	cfg := slotsConfig()
	cfg.BufferMinutes = 15
	now := monday.AddDate(0, 0, -1).Add(12 * time.Hour)

	slots, err := generateSlots(cfg, monday, monday, now)
	require.NoError(t, err)

	// Шаг курсора 45 минут, последний слот 10:30 заканчивается ровно в 11:00
	assert.Equal(t, []time.Time{
		monday.Add(9 * time.Hour),
		monday.Add(9*time.Hour + 45*time.Minute),
		monday.Add(10*time.Hour + 30*time.Minute),
	}, slotStarts(slots))
}

func TestGenerateSlots_BufferResetsPerRange(t *testing.T) {
	cfg := slotsConfig()
	cfg.BufferMinutes = 15
	cfg.WorkingHours[time.Monday] = domain.DaySchedule{
		Enabled: true,
		Ranges: []domain.TimeRange{
			{Start: "09:00", End: "10:00"},
			{Start: "14:00", End: "15:00"},
		},
	}
	now := monday.AddDate(0, 0, -1).Add(12 * time.Hour)

	slots, err := generateSlots(cfg, monday, monday, now)
	require.NoError(t, err)

	// Второй интервал начинается заново с 14:00, буфер между
	// интервалами не переносится
	assert.Equal(t, []time.Time{
		monday.Add(9 * time.Hour),
		monday.Add(14 * time.Hour),
	}, slotStarts(slots))
}

func TestGenerateSlots_BlockedDate(t *testing.T) {
	cfg := slotsConfig()
	cfg.BlockedDates["2025-10-20"] = struct{}{}
	now := monday.AddDate(0, 0, -1).Add(12 * time.Hour)

	slots, err := generateSlots(cfg, monday, monday, now)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlots_DisabledDay(t *testing.T) {
	cfg := slotsConfig()
	tuesday := monday.AddDate(0, 0, 1)
	now := monday.AddDate(0, 0, -1).Add(12 * time.Hour)

	slots, err := generateSlots(cfg, tuesday, tuesday, now)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlots_MinAdvanceBoundary(t *testing.T) {
	cfg := slotsConfig()
	cfg.MinAdvanceMinutes = 30

	// earliest = 09:00 ровно: слот 09:00 проходит
	now := monday.Add(8*time.Hour + 30*time.Minute)
	slots, err := generateSlots(cfg, monday, monday, now)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, monday.Add(9*time.Hour), slots[0].Start)

	// Минутой позже earliest = 09:01: слот 09:00 отсекается
	now = monday.Add(8*time.Hour + 31*time.Minute)
	slots, err = generateSlots(cfg, monday, monday, now)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, monday.Add(9*time.Hour+30*time.Minute), slots[0].Start)
}

func TestGenerateSlots_MaxAdvanceClipsRange(t *testing.T) {
	cfg := slotsConfig()
	cfg.MaxAdvanceDays = 3
	for day := time.Sunday; day <= time.Saturday; day++ {
		cfg.WorkingHours[day] = domain.DaySchedule{
			Enabled: true,
			Ranges:  []domain.TimeRange{{Start: "09:00", End: "10:00"}},
		}
	}

	now := monday.AddDate(0, 0, -1).Add(12 * time.Hour)
	rangeEnd := monday.AddDate(0, 0, 7)

	slots, err := generateSlots(cfg, monday, rangeEnd, now)
	require.NoError(t, err)

	// latest = воскресенье + 3 дня = среда 12:00, дни после среды отсекаются
	require.NotEmpty(t, slots)
	lastDay := slots[len(slots)-1].Start.Truncate(24 * time.Hour)
	assert.Equal(t, monday.AddDate(0, 0, 2), lastDay)
}

func TestGenerateSlots_TimezoneWestOfUTC(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	cfg := slotsConfig()
	cfg.Timezone = "America/New_York"
	cfg.Location = loc

	// Дата запроса приходит как полночь UTC; трактуется как календарный
	// понедельник 20-е в локальной таймзоне, а не как инстант
	requestDay := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 10, 19, 12, 0, 0, 0, loc)

	slots, err := generateSlots(cfg, requestDay, requestDay, now)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		time.Date(2025, 10, 20, 9, 0, 0, 0, loc),
		time.Date(2025, 10, 20, 9, 30, 0, 0, loc),
		time.Date(2025, 10, 20, 10, 0, 0, 0, loc),
		time.Date(2025, 10, 20, 10, 30, 0, 0, loc),
	}, slotStarts(slots))
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	cfg := slotsConfig()
	now := monday.AddDate(0, 0, -1).Add(12 * time.Hour)

	first, err := generateSlots(cfg, monday, monday, now)
	require.NoError(t, err)

	second, err := generateSlots(cfg, monday, monday, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFilterAvailable(t *testing.T) {
	cfg := slotsConfig()
	now := monday.AddDate(0, 0, -1).Add(12 * time.Hour)

	candidates, err := generateSlots(cfg, monday, monday, now)
	require.NoError(t, err)
	require.Len(t, candidates, 4)

	booked := []*domain.Booking{
		{
			AppointmentStart: monday.Add(9*time.Hour + 30*time.Minute),
			DurationMinutes:  30,
			Status:           domain.StatusActive,
		},
	}

	available := filterAvailable(candidates, booked)

	// Выпадает только слот 09:30, примыкающие 09:00 и 10:00 остаются
	assert.Equal(t, []time.Time{
		monday.Add(9 * time.Hour),
		monday.Add(10 * time.Hour),
		monday.Add(10*time.Hour + 30*time.Minute),
	}, slotStarts(available))
}
