package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusActive    BookingStatus = "active"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking represents a customer reservation of one time slot
type Booking struct {
	ID        int64
	AccountID int64

	// Reference опаковый уникальный ключ для клиента; наружу отдается
	// только он, внутренний ID не публикуется
	Reference string

	CustomerFirstName string
	CustomerLastName  string
	CustomerPhone     string
	CustomerNotes     *string

	AppointmentStart time.Time
	DurationMinutes  int

	Status BookingStatus

	// Данные источника запроса для расследования злоупотреблений
	CustomerIP    *string
	CustomerAgent *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies its slot
func (b *Booking) IsActive() bool {
	return b.Status == StatusActive
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// End returns the exclusive end instant of the booking interval
func (b *Booking) End() time.Time {
	return b.AppointmentStart.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// Overlaps reports whether the booking interval overlaps [start, end).
// Intervals are half-open: bookings that exactly touch do not overlap
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.AppointmentStart.Before(end) && b.End().After(start)
}

// AccountBookingsFilter фильтр для выборки бронирований аккаунта
type AccountBookingsFilter struct {
	AccountID int64
	Status    *BookingStatus // nil = все статусы
	StartDate *time.Time     // начало периода по appointment_start (опционально)
	EndDate   *time.Time     // конец периода по appointment_start (опционально)
	Limit     int            // 0 = значение по умолчанию
	Offset    int
}

// BookingStats агрегированная статистика бронирований аккаунта
type BookingStats struct {
	TotalBookings     int
	ActiveBookings    int
	BookingsThisMonth int
	UpcomingBookings  int
}
