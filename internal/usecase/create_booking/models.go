package create_booking

import "time"

// Request модель запроса создания бронирования
type Request struct {
	WidgetID string // Публичный идентификатор виджета

	FirstName string
	LastName  string
	Phone     string
	Notes     *string

	// AppointmentStart запрошенное начало слота (абсолютный момент времени)
	AppointmentStart time.Time

	// IdempotencyKey опциональный ключ идемпотентности: повторный запрос
	// с тем же ключом вернет уже созданное бронирование
	IdempotencyKey *string

	// Данные источника запроса (заполняются хендлером)
	CustomerIP *string
	UserAgent  *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	Reference        string
	FirstName        string
	LastName         string
	Phone            string
	Notes            *string
	AppointmentStart time.Time
	DurationMinutes  int
	Status           string
	CreatedAt        time.Time
}
