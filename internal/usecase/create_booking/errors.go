package create_booking

import "errors"

var (
	// ErrAccountNotFound возвращается, когда виджет не найден
	ErrAccountNotFound = errors.New("create_booking: booking account not found")

	// ErrConfigNotFound возвращается, когда у аккаунта нет конфигурации расписания
	ErrConfigNotFound = errors.New("create_booking: schedule configuration not found")

	// ErrTooLateToBook возвращается, когда слот нарушает minAdvanceMinutes
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrDateTooFarInFuture возвращается, когда слот превышает ограничение maxAdvanceDays
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrDailyLimitReached возвращается, когда достигнут дневной лимит бронирований
	ErrDailyLimitReached = errors.New("create_booking: daily booking limit reached")

	// ErrMonthlyLimitReached возвращается, когда исчерпана месячная квота тарифа
	ErrMonthlyLimitReached = errors.New("create_booking: monthly booking limit reached, upgrade required")

	// ErrSlotConflict возвращается, когда слот уже занят другим бронированием
	ErrSlotConflict = errors.New("create_booking: this time slot is no longer available")

	// ErrRateLimited возвращается при превышении лимита попыток с одного адреса
	ErrRateLimited = errors.New("create_booking: too many booking attempts")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
