package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WidgetBookingService/pkg/types"
)

func testConfig(t *testing.T) *ScheduleConfig {
	t.Helper()

	loc, err := time.LoadLocation("UTC")
	require.NoError(t, err)

	var week WeekSchedule
	week[time.Monday] = DaySchedule{
		Enabled: true,
		Ranges:  []TimeRange{{Start: "09:00", End: "18:00"}},
	}

	return &ScheduleConfig{
		AccountID:           1,
		Timezone:            "UTC",
		Location:            loc,
		SlotDurationMinutes: 30,
		BufferMinutes:       0,
		MinAdvanceMinutes:   60,
		MaxAdvanceDays:      30,
		MaxDailyBookings:    8,
		WorkingHours:        week,
		BlockedDates:        map[string]struct{}{"2025-10-20": {}},
	}
}

func TestTimeRange_Validate(t *testing.T) {
	valid := TimeRange{Start: "09:00", End: "18:00"}
	assert.NoError(t, valid.Validate())

	inverted := TimeRange{Start: "18:00", End: "09:00"}
	assert.ErrorIs(t, inverted.Validate(), ErrInvalidTimeRange)

	equal := TimeRange{Start: "09:00", End: "09:00"}
	assert.ErrorIs(t, equal.Validate(), ErrInvalidTimeRange)

	badFormat := TimeRange{Start: "9am", End: "18:00"}
	assert.ErrorIs(t, badFormat.Validate(), types.ErrInvalidTimeString)
}

func TestWeekSchedule_Validate(t *testing.T) {
	var week WeekSchedule
	week[time.Monday] = DaySchedule{
		Enabled: true,
		Ranges:  []TimeRange{{Start: "10:00", End: "09:00"}},
	}
	assert.Error(t, week.Validate())

	// Выключенный день с некорректным интервалом не проверяется
	week[time.Monday].Enabled = false
	assert.NoError(t, week.Validate())
}

func TestScheduleConfig_IsDateBlocked(t *testing.T) {
	cfg := testConfig(t)

	blocked := time.Date(2025, 10, 20, 12, 0, 0, 0, cfg.Location)
	assert.True(t, cfg.IsDateBlocked(blocked))

	open := time.Date(2025, 10, 21, 12, 0, 0, 0, cfg.Location)
	assert.False(t, cfg.IsDateBlocked(open))
}

func TestScheduleConfig_AdvanceWindow(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, cfg.Location)

	assert.Equal(t, now.Add(60*time.Minute), cfg.EarliestStart(now))
	assert.Equal(t, now.AddDate(0, 0, 30), cfg.LatestStart(now))
}

func TestScheduleConfig_Validate(t *testing.T) {
	cfg := testConfig(t)
	assert.NoError(t, cfg.Validate())

	broken := testConfig(t)
	broken.SlotDurationMinutes = 0
	assert.ErrorIs(t, broken.Validate(), ErrCorruptConfig)

	noLoc := testConfig(t)
	noLoc.Location = nil
	assert.ErrorIs(t, noLoc.Validate(), ErrCorruptConfig)

	badHours := testConfig(t)
	badHours.WorkingHours[time.Monday].Ranges[0] = TimeRange{Start: "18:00", End: "09:00"}
	assert.ErrorIs(t, badHours.Validate(), ErrCorruptConfig)
}

func TestBooking_Overlaps(t *testing.T) {
	start := time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)
	booking := &Booking{
		AppointmentStart: start,
		DurationMinutes:  30,
		Status:           StatusActive,
	}

	// Пересечение в середине
	assert.True(t, booking.Overlaps(start.Add(15*time.Minute), start.Add(45*time.Minute)))

	// Полное совпадение
	assert.True(t, booking.Overlaps(start, start.Add(30*time.Minute)))

	// Примыкание встык не считается пересечением
	assert.False(t, booking.Overlaps(start.Add(30*time.Minute), start.Add(60*time.Minute)))
	assert.False(t, booking.Overlaps(start.Add(-30*time.Minute), start))
}

func TestPlan_HasUnlimitedMonthlyBookings(t *testing.T) {
	assert.False(t, PlanFree.HasUnlimitedMonthlyBookings())
	assert.True(t, PlanPro.HasUnlimitedMonthlyBookings())
	assert.True(t, PlanEnterprise.HasUnlimitedMonthlyBookings())
}
