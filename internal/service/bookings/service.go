package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WidgetBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-WidgetBookingService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByReference получает бронирование по публичному ключу
func (s *Service) GetByReference(ctx context.Context, reference string) (*models.BookingResponse, error) {
	s.logger.Info("GetByReference: fetching booking reference=%s", reference)

	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalidInput)
	}

	booking, err := s.bookingRepo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByReference: booking reference=%s not found", reference)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByReference: repository error for reference=%s: %v", reference, err)
		return nil, fmt.Errorf("%w: GetByReference - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// Cancel отменяет бронирование по публичному ключу.
// Единственный допустимый переход статуса: active -> cancelled.
// Повторная отмена возвращает ErrAlreadyCancelled, cancelled_at при этом
// не меняется. Бронирования никогда не удаляются
func (s *Service) Cancel(ctx context.Context, reference string, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking reference=%s", reference)

	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalidInput)
	}

	if req.CancellationReason != nil && len(*req.CancellationReason) > domain.MaxCancelReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason cannot exceed %d characters",
			ErrInvalidInput, domain.MaxCancelReasonLength)
	}

	// Получаем бронирование
	booking, err := s.bookingRepo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking reference=%s not found", reference)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for reference=%s: %v", reference, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	// Проверяем, что бронирование еще не отменено
	if booking.IsCancelled() {
		s.logger.Warn("Cancel: booking reference=%s is already cancelled", reference)
		return nil, ErrAlreadyCancelled
	}

	// Отменяем бронирование. UPDATE с условием status = active: при гонке
	// двух отмен вторая не затронет ни одной строки
	if err := s.bookingRepo.Cancel(ctx, booking.ID, req.CancellationReason); err != nil {
		if errors.Is(err, bookingRepo.ErrNotCancellable) {
			s.logger.Warn("Cancel: booking reference=%s was cancelled concurrently", reference)
			return nil, ErrAlreadyCancelled
		}
		s.logger.Error("Cancel: repository error for reference=%s: %v", reference, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	// Перечитываем бронирование с заполненными cancelled_at и reason
	cancelled, err := s.bookingRepo.GetByReference(ctx, reference)
	if err != nil {
		s.logger.Error("Cancel: failed to re-fetch booking reference=%s: %v", reference, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled booking reference=%s", reference)
	return models.FromDomainBooking(cancelled), nil
}

// GetAccountBookings получает бронирования аккаунта с гибкой фильтрацией.
// Поддерживает фильтрацию по статусу и периоду, пагинацию через limit/offset
func (s *Service) GetAccountBookings(ctx context.Context, req *models.GetAccountBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetAccountBookings: fetching bookings for account=%d", req.AccountID)
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s",
			req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	s.logger.Info(logMsg)

	if req.AccountID <= 0 {
		return nil, fmt.Errorf("%w: accountID must be positive", ErrInvalidInput)
	}

	// Конвертируем request в domain фильтр
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetAccountBookings: invalid filter for account=%d: %v", req.AccountID, err)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByAccountWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetAccountBookings: repository error for account=%d: %v", req.AccountID, err)
		return nil, fmt.Errorf("%w: GetAccountBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetAccountBookings: successfully fetched %d bookings for account=%d", len(bookings), req.AccountID)
	return models.FromDomainBookingList(bookings), nil
}

// GetStats получает агрегированную статистику бронирований аккаунта
func (s *Service) GetStats(ctx context.Context, accountID int64) (*models.StatsResponse, error) {
	s.logger.Info("GetStats: fetching stats for account=%d", accountID)

	if accountID <= 0 {
		return nil, fmt.Errorf("%w: accountID must be positive", ErrInvalidInput)
	}

	stats, err := s.bookingRepo.GetStats(ctx, accountID, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("GetStats: repository error for account=%d: %v", accountID, err)
		return nil, fmt.Errorf("%w: GetStats - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainStats(stats), nil
}
