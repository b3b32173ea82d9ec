package create_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.WidgetID == "" {
		return fmt.Errorf("%w: widgetID is required", ErrInvalidInput)
	}

	if err := validateName(req.FirstName, "firstName"); err != nil {
		return err
	}

	if err := validateName(req.LastName, "lastName"); err != nil {
		return err
	}

	phone := strings.TrimSpace(req.Phone)
	if len(phone) < domain.MinPhoneLength || len(phone) > domain.MaxPhoneLength {
		return fmt.Errorf("%w: phone must be between %d and %d characters",
			ErrInvalidInput, domain.MinPhoneLength, domain.MaxPhoneLength)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes cannot exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if req.AppointmentStart.IsZero() {
		return fmt.Errorf("%w: appointmentStart is required", ErrInvalidInput)
	}

	if req.IdempotencyKey != nil && *req.IdempotencyKey == "" {
		return fmt.Errorf("%w: idempotencyKey cannot be empty", ErrInvalidInput)
	}

	return nil
}

func validateName(name, field string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < domain.MinCustomerNameLength || len(trimmed) > domain.MaxCustomerNameLength {
		return fmt.Errorf("%w: %s must be between %d and %d characters",
			ErrInvalidInput, field, domain.MinCustomerNameLength, domain.MaxCustomerNameLength)
	}
	return nil
}

// validateAdvanceWindow проверяет, что начало слота попадает в допустимое
// окно бронирования [now + minAdvance, now + maxAdvanceDays].
// Вызывается дважды: до транзакции и внутри нее со свежим временем
func validateAdvanceWindow(start, now time.Time, cfg *domain.ScheduleConfig) error {
	if start.Before(cfg.EarliestStart(now)) {
		return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, cfg.MinAdvanceMinutes)
	}

	if start.After(cfg.LatestStart(now)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, cfg.MaxAdvanceDays)
	}

	return nil
}

// hasOverlap проверяет пересечение интервала [start, end) с активными
// бронированиями. Полуоткрытые интервалы: примыкание встык не считается
func hasOverlap(start, end time.Time, bookings []*domain.Booking) bool {
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
