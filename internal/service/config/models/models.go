package models

import (
	"time"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
)

// WidgetConfigResponse публичное подмножество конфигурации для виджета.
// Тарифы, лимиты и заблокированные даты наружу не отдаются: виджет видит
// их эффект через список доступных слотов
type WidgetConfigResponse struct {
	WidgetID            string                 `json:"widgetId"`
	BusinessName        string                 `json:"businessName"`
	Locale              string                 `json:"locale"`
	Timezone            string                 `json:"timezone"`
	SlotDurationMinutes int                    `json:"slotDurationMinutes"`
	MaxAdvanceDays      int                    `json:"maxAdvanceDays"`
	WorkingHours        map[string]DayResponse `json:"workingHours"`
}

// DayResponse расписание одного дня недели
type DayResponse struct {
	Enabled bool           `json:"enabled"`
	Slots   []SlotResponse `json:"slots"`
}

// SlotResponse один интервал рабочего времени
type SlotResponse struct {
	Start string `json:"start"` // "09:00"
	End   string `json:"end"`   // "18:00"
}

// FromDomain собирает публичный DTO из аккаунта и конфигурации
func FromDomain(account *domain.Account, cfg *domain.ScheduleConfig) *WidgetConfigResponse {
	resp := &WidgetConfigResponse{
		WidgetID:            account.WidgetID,
		BusinessName:        account.OwnerName,
		Locale:              cfg.Locale,
		Timezone:            cfg.Timezone,
		SlotDurationMinutes: cfg.SlotDurationMinutes,
		MaxAdvanceDays:      cfg.MaxAdvanceDays,
		WorkingHours:        make(map[string]DayResponse, 7),
	}

	for day := time.Sunday; day <= time.Saturday; day++ {
		ds := cfg.WorkingHours[day]

		slots := make([]SlotResponse, 0, len(ds.Ranges))
		for _, r := range ds.Ranges {
			slots = append(slots, SlotResponse{
				Start: r.Start.String(),
				End:   r.End.String(),
			})
		}

		resp.WorkingHours[dayKey(day)] = DayResponse{
			Enabled: ds.Enabled,
			Slots:   slots,
		}
	}

	return resp
}

// dayKey ключи дней недели в JSON, в нижнем регистре
func dayKey(day time.Weekday) string {
	switch day {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}
