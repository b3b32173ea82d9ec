package domain

import (
	"errors"
	"time"
)

// Business validation constants
const (
	MinCustomerNameLength = 1
	MaxCustomerNameLength = 100
	MinPhoneLength        = 8
	MaxPhoneLength        = 20
	MaxNotesLength        = 500
	MaxCancelReasonLength = 500

	// MaxAvailabilityRangeDays максимальная длина запрашиваемого диапазона
	// доступности; ограничение публичного эндпоинта, не генератора
	MaxAvailabilityRangeDays = 90
)

// Rate limiting: не более RateLimitMaxAttempts попыток бронирования
// с одного адреса на один аккаунт за скользящее окно RateLimitWindow
const (
	RateLimitMaxAttempts = 5
	RateLimitWindow      = time.Hour
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Ошибки целостности данных конфигурации
var (
	// ErrCorruptConfig возвращается, когда конфигурация в хранилище
	// не проходит валидацию (испорченные данные выше по потоку)
	ErrCorruptConfig = errors.New("domain: corrupt schedule configuration")

	// ErrInvalidTimeRange возвращается для интервала рабочих часов,
	// у которого start не раньше end
	ErrInvalidTimeRange = errors.New("domain: invalid working hours range")
)
