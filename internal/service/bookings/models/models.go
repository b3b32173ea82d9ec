package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// GetAccountBookingsRequest запрос на получение бронирований аккаунта
type GetAccountBookingsRequest struct {
	AccountID int64      `json:"accountId"`
	Status    *string    `json:"status,omitempty"`    // Фильтр по статусу (опционально)
	StartDate *time.Time `json:"startDate,omitempty"` // Начало периода (опционально)
	EndDate   *time.Time `json:"endDate,omitempty"`   // Конец периода (опционально)
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetAccountBookingsRequest) ToDomainFilter() (domain.AccountBookingsFilter, error) {
	filter := domain.AccountBookingsFilter{
		AccountID: r.AccountID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Limit:     r.Limit,
		Offset:    r.Offset,
	}

	// Конвертируем статус если указан
	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования.
// Внутренний ID наружу не отдается, клиент работает только с reference
type BookingResponse struct {
	Reference        string    `json:"reference"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Phone            string    `json:"phone"`
	Notes            *string   `json:"notes,omitempty"`
	AppointmentStart time.Time `json:"appointmentStart"`
	DurationMinutes  int       `json:"durationMinutes"`
	Status           string    `json:"status"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// StatsResponse агрегированная статистика бронирований аккаунта
type StatsResponse struct {
	TotalBookings     int `json:"totalBookings"`
	ActiveBookings    int `json:"activeBookings"`
	BookingsThisMonth int `json:"bookingsThisMonth"`
	UpcomingBookings  int `json:"upcomingBookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		Reference:          b.Reference,
		FirstName:          b.CustomerFirstName,
		LastName:           b.CustomerLastName,
		Phone:              b.CustomerPhone,
		Notes:              b.CustomerNotes,
		AppointmentStart:   b.AppointmentStart,
		DurationMinutes:    b.DurationMinutes,
		Status:             string(b.Status),
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

// FromDomainStats конвертирует domain статистику в DTO
func FromDomainStats(s *domain.BookingStats) *StatsResponse {
	if s == nil {
		return nil
	}
	return &StatsResponse{
		TotalBookings:     s.TotalBookings,
		ActiveBookings:    s.ActiveBookings,
		BookingsThisMonth: s.BookingsThisMonth,
		UpcomingBookings:  s.UpcomingBookings,
	}
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	validStatuses := []domain.BookingStatus{
		domain.StatusActive,
		domain.StatusCancelled,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
