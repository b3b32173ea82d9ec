package config

import "errors"

var (
	// ErrAccountNotFound возвращается, когда виджет не найден
	ErrAccountNotFound = errors.New("booking account not found")

	// ErrConfigNotFound возвращается, когда у аккаунта нет конфигурации расписания
	ErrConfigNotFound = errors.New("schedule configuration not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
