package bookings

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WidgetBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-WidgetBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-WidgetBookingService/pkg/ptr"
)

type fakeBookingRepo struct {
	booking   *domain.Booking
	getErr    error
	cancelErr error
	list      []*domain.Booking
	listErr   error
	stats     *domain.BookingStats
	statsErr  error

	cancelCalls  int
	cancelReason *string
	statsNow     time.Time
}

func (f *fakeBookingRepo) GetByReference(_ context.Context, _ string) (*domain.Booking, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copied := *f.booking
	return &copied, nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, _ int64, reason *string) error {
	f.cancelCalls++
	f.cancelReason = reason
	if f.cancelErr != nil {
		return f.cancelErr
	}
	now := time.Date(2025, 10, 16, 12, 0, 0, 0, time.UTC)
	f.booking.Status = domain.StatusCancelled
	f.booking.CancelledAt = &now
	f.booking.CancellationReason = reason
	return nil
}

func (f *fakeBookingRepo) GetByAccountWithFilter(_ context.Context, _ domain.AccountBookingsFilter) ([]*domain.Booking, error) {
	return f.list, f.listErr
}

func (f *fakeBookingRepo) GetStats(_ context.Context, _ int64, now time.Time) (*domain.BookingStats, error) {
	f.statsNow = now
	return f.stats, f.statsErr
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func activeBooking() *domain.Booking {
	return &domain.Booking{
		ID:                1,
		AccountID:         1,
		Reference:         "BK-A1B2C3D4E5F6",
		CustomerFirstName: "Alice",
		CustomerLastName:  "Jones",
		CustomerPhone:     "+1234567890",
		AppointmentStart:  time.Date(2025, 10, 20, 10, 0, 0, 0, time.UTC),
		DurationMinutes:   30,
		Status:            domain.StatusActive,
	}
}

func newTestService(repo *fakeBookingRepo) *Service {
	return NewService(repo, nopLogger{})
}

func TestGetByReference(t *testing.T) {
	repo := &fakeBookingRepo{booking: activeBooking()}
	svc := newTestService(repo)

	resp, err := svc.GetByReference(context.Background(), "BK-A1B2C3D4E5F6")
	require.NoError(t, err)

	assert.Equal(t, "BK-A1B2C3D4E5F6", resp.Reference)
	assert.Equal(t, string(domain.StatusActive), resp.Status)
	assert.Nil(t, resp.CancelledAt)
}

func TestGetByReference_NotFound(t *testing.T) {
	repo := &fakeBookingRepo{getErr: bookingRepo.ErrBookingNotFound}
	svc := newTestService(repo)

	_, err := svc.GetByReference(context.Background(), "BK-MISSING")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetByReference_EmptyReference(t *testing.T) {
	svc := newTestService(&fakeBookingRepo{})

	_, err := svc.GetByReference(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancel(t *testing.T) {
	repo := &fakeBookingRepo{booking: activeBooking()}
	svc := newTestService(repo)

	reason := "changed my plans"
	resp, err := svc.Cancel(context.Background(), "BK-A1B2C3D4E5F6", &models.CancelBookingRequest{
		CancellationReason: &reason,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.cancelCalls)
	assert.Equal(t, &reason, repo.cancelReason)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	require.NotNil(t, resp.CancelledAt)
	assert.Equal(t, "2025-10-16T12:00:00Z", *resp.CancelledAt)
	assert.Equal(t, &reason, resp.CancellationReason)
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	booking := activeBooking()
	booking.Status = domain.StatusCancelled
	repo := &fakeBookingRepo{booking: booking}
	svc := newTestService(repo)

	_, err := svc.Cancel(context.Background(), "BK-A1B2C3D4E5F6", &models.CancelBookingRequest{})
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	// UPDATE не выполняется, cancelled_at не трогаем
	assert.Equal(t, 0, repo.cancelCalls)
}

func TestCancel_ConcurrentCancel(t *testing.T) {
	// Между чтением и UPDATE бронирование отменили в другом запросе:
	// репозиторий не находит активной строки
	repo := &fakeBookingRepo{
		booking:   activeBooking(),
		cancelErr: bookingRepo.ErrNotCancellable,
	}
	svc := newTestService(repo)

	_, err := svc.Cancel(context.Background(), "BK-A1B2C3D4E5F6", &models.CancelBookingRequest{})
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancel_NotFound(t *testing.T) {
	repo := &fakeBookingRepo{getErr: bookingRepo.ErrBookingNotFound}
	svc := newTestService(repo)

	_, err := svc.Cancel(context.Background(), "BK-MISSING", &models.CancelBookingRequest{})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancel_ReasonTooLong(t *testing.T) {
	repo := &fakeBookingRepo{booking: activeBooking()}
	svc := newTestService(repo)

	reason := strings.Repeat("x", domain.MaxCancelReasonLength+1)
	_, err := svc.Cancel(context.Background(), "BK-A1B2C3D4E5F6", &models.CancelBookingRequest{
		CancellationReason: &reason,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 0, repo.cancelCalls)
}

func TestGetAccountBookings(t *testing.T) {
	repo := &fakeBookingRepo{list: []*domain.Booking{activeBooking()}}
	svc := newTestService(repo)

	resp, err := svc.GetAccountBookings(context.Background(), &models.GetAccountBookingsRequest{
		AccountID: 1,
		Status:    ptr.Ptr("active"),
		Limit:     20,
	})
	require.NoError(t, err)

	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "BK-A1B2C3D4E5F6", resp.Bookings[0].Reference)
}

func TestGetAccountBookings_InvalidStatus(t *testing.T) {
	svc := newTestService(&fakeBookingRepo{})

	_, err := svc.GetAccountBookings(context.Background(), &models.GetAccountBookingsRequest{
		AccountID: 1,
		Status:    ptr.Ptr("pending"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetAccountBookings_InvalidAccountID(t *testing.T) {
	svc := newTestService(&fakeBookingRepo{})

	_, err := svc.GetAccountBookings(context.Background(), &models.GetAccountBookingsRequest{AccountID: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetStats(t *testing.T) {
	now := time.Date(2025, 10, 16, 12, 0, 0, 0, time.UTC)
	repo := &fakeBookingRepo{
		stats: &domain.BookingStats{
			TotalBookings:     10,
			ActiveBookings:    7,
			BookingsThisMonth: 4,
			UpcomingBookings:  3,
		},
	}
	svc := newTestService(repo)
	svc.timeProvider = &fixedTime{now: now}

	resp, err := svc.GetStats(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 10, resp.TotalBookings)
	assert.Equal(t, 7, resp.ActiveBookings)
	assert.Equal(t, 4, resp.BookingsThisMonth)
	assert.Equal(t, 3, resp.UpcomingBookings)

	// Репозиторий считает "этот месяц" и "предстоящие" от часов сервиса
	assert.Equal(t, now, repo.statsNow)
}
