package get_available_slots

import "errors"

var (
	// ErrAccountNotFound возвращается, когда виджет не найден
	ErrAccountNotFound = errors.New("get_available_slots: booking account not found")

	// ErrConfigNotFound возвращается, когда у аккаунта нет конфигурации расписания
	ErrConfigNotFound = errors.New("get_available_slots: schedule configuration not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrRangeTooLong возвращается, когда запрошенный диапазон превышает 90 дней
	ErrRangeTooLong = errors.New("get_available_slots: date range too long")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
