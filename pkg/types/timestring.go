package types

import (
	"errors"
	"fmt"
	"time"
)

// TimeFormat формат времени суток "HH:MM" (24 часа)
const TimeFormat = "15:04"

// ErrInvalidTimeString возвращается при некорректном формате строки времени
var ErrInvalidTimeString = errors.New("types: invalid time string format, expected HH:MM")

// TimeString время суток в формате "HH:MM" (например, "09:30")
// Используется для рабочих часов и границ слотов
type TimeString string

// NewTimeString создает TimeString из time.Time (берёт только часы и минуты)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(TimeFormat))
}

// NewTimeStringFromString создает TimeString из строки с валидацией формата
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// Validate проверяет, что значение соответствует формату "HH:MM".
// time.Parse принимает и однозначный час ("9:30"), поэтому формат
// дополнительно проверяется по длине и позиции разделителя
func (t TimeString) Validate() error {
	s := string(t)
	if len(s) != 5 || s[2] != ':' {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	if _, err := time.Parse(TimeFormat, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	return nil
}

// IsZero возвращает true для пустого значения
func (t TimeString) IsZero() bool {
	return t == ""
}

// String возвращает строковое представление
func (t TimeString) String() string {
	return string(t)
}

// Minutes возвращает количество минут с полуночи
func (t TimeString) Minutes() (int, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	parsed, err := time.Parse(TimeFormat, string(t))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// AddMinutes возвращает новое время, сдвинутое на minutes минут вперед
// Переход через полночь не поддерживается: результат обрезается до 23:59
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	total, err := t.Minutes()
	if err != nil {
		return "", err
	}
	total += minutes
	if total > 23*60+59 {
		total = 23*60 + 59
	}
	if total < 0 {
		total = 0
	}
	return TimeString(fmt.Sprintf("%02d:%02d", total/60, total%60)), nil
}

// IsBefore возвращает true, если t строго раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return string(t) < string(other)
}

// IsAfter возвращает true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return string(t) > string(other)
}

// At привязывает время суток к календарной дате в указанной таймзоне
func (t TimeString) At(date time.Time, loc *time.Location) (time.Time, error) {
	total, err := t.Minutes()
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, total/60, total%60, 0, 0, loc), nil
}
