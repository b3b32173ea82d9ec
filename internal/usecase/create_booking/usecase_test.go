package create_booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
)

// monday = 2025-10-20 (понедельник)
var monday = time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)

type fakeAccountRepo struct {
	account *domain.Account
	err     error
}

func (f *fakeAccountRepo) GetByWidgetID(_ context.Context, _ string) (*domain.Account, error) {
	return f.account, f.err
}

type fakeConfigRepo struct {
	cfg *domain.ScheduleConfig
	err error
}

func (f *fakeConfigRepo) GetByAccountID(_ context.Context, _ int64) (*domain.ScheduleConfig, error) {
	return f.cfg, f.err
}

// memBookingRepo потокобезопасная in-memory реализация репозитория
type memBookingRepo struct {
	mu       sync.Mutex
	bookings []*domain.Booking
	nextID   int64
	now      time.Time
	idemKeys map[string]*int64
}

func newMemBookingRepo(now time.Time) *memBookingRepo {
	return &memBookingRepo{
		now:      now,
		idemKeys: make(map[string]*int64),
	}
}

func (r *memBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	b.ID = r.nextID
	b.CreatedAt = r.now
	b.UpdatedAt = r.now

	stored := *b
	r.bookings = append(r.bookings, &stored)
	return b, nil
}

func (r *memBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.ID == id {
			copied := *b
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("booking %d not found", id)
}

func (r *memBookingRepo) ListActiveInRange(_ context.Context, accountID int64, from, to time.Time) ([]*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*domain.Booking
	for _, b := range r.bookings {
		if b.AccountID != accountID || !b.IsActive() {
			continue
		}
		if b.AppointmentStart.Before(to) && b.End().After(from) {
			copied := *b
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *memBookingRepo) CountActiveBetween(_ context.Context, accountID int64, from, to time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, b := range r.bookings {
		if b.AccountID != accountID || !b.IsActive() {
			continue
		}
		if !b.AppointmentStart.Before(from) && b.AppointmentStart.Before(to) {
			count++
		}
	}
	return count, nil
}

func (r *memBookingRepo) CountActiveCreatedBetween(_ context.Context, accountID int64, from, to time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, b := range r.bookings {
		if b.AccountID != accountID || !b.IsActive() {
			continue
		}
		if !b.CreatedAt.Before(from) && b.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (r *memBookingRepo) CountRecentAttemptsByIP(_ context.Context, accountID int64, ip string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, b := range r.bookings {
		if b.AccountID != accountID || b.CustomerIP == nil || *b.CustomerIP != ip {
			continue
		}
		if !b.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *memBookingRepo) LockIdempotencyKey(_ context.Context, accountID int64, key string) (*int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mapKey := fmt.Sprintf("%d:%s", accountID, key)
	if id, ok := r.idemKeys[mapKey]; ok {
		return id, nil
	}
	r.idemKeys[mapKey] = nil
	return nil, nil
}

func (r *memBookingRepo) FinalizeIdempotencyKey(_ context.Context, accountID int64, key string, bookingID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.idemKeys[fmt.Sprintf("%d:%s", accountID, key)] = &bookingID
	return nil
}

// serialTxManager исполняет закрытия последовательно, имитируя
// сериализуемые транзакции
type serialTxManager struct {
	mu sync.Mutex
}

func (m *serialTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func bookingConfig() *domain.ScheduleConfig {
	var week domain.WeekSchedule
	for day := time.Sunday; day <= time.Saturday; day++ {
		week[day] = domain.DaySchedule{
			Enabled: true,
			Ranges:  []domain.TimeRange{{Start: "09:00", End: "18:00"}},
		}
	}

	return &domain.ScheduleConfig{
		AccountID:           1,
		Timezone:            "UTC",
		Location:            time.UTC,
		SlotDurationMinutes: 30,
		MinAdvanceMinutes:   60,
		MaxAdvanceDays:      30,
		MaxDailyBookings:    8,
		WorkingHours:        week,
		BlockedDates:        map[string]struct{}{},
	}
}

func freeAccount() *domain.Account {
	return &domain.Account{
		ID:                  1,
		WidgetID:            "w-1",
		Plan:                domain.PlanFree,
		MaxBookingsPerMonth: 50,
	}
}

func newBookingUseCase(account *domain.Account, cfg *domain.ScheduleConfig, repo *memBookingRepo, now time.Time) *UseCase {
	uc := NewUseCase(
		&fakeAccountRepo{account: account},
		&fakeConfigRepo{cfg: cfg},
		repo,
		&serialTxManager{},
		nopLogger{},
	)
	uc.timeProvider = &fixedTime{now: now}
	return uc
}

func validRequest(start time.Time) *Request {
	ip := "203.0.113.7"
	return &Request{
		WidgetID:         "w-1",
		FirstName:        "Alice",
		LastName:         "Jones",
		Phone:            "+1234567890",
		AppointmentStart: start,
		CustomerIP:       &ip,
	}
}

func TestExecute_Success(t *testing.T) {
	now := monday
	repo := newMemBookingRepo(now)
	uc := newBookingUseCase(freeAccount(), bookingConfig(), repo, now)

	resp, err := uc.Execute(context.Background(), validRequest(monday.Add(10*time.Hour)))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.Reference, "BK-"))
	assert.Equal(t, string(domain.StatusActive), resp.Status)
	assert.Equal(t, 30, resp.DurationMinutes)
	assert.Equal(t, monday.Add(10*time.Hour), resp.AppointmentStart)
	assert.Len(t, repo.bookings, 1)
}

func TestExecute_AdvanceWindowBoundaries(t *testing.T) {
	now := monday.Add(8 * time.Hour)
	repo := newMemBookingRepo(now)
	uc := newBookingUseCase(freeAccount(), bookingConfig(), repo, now)

	// Ровно now + minAdvance: проходит
	_, err := uc.Execute(context.Background(), validRequest(now.Add(60*time.Minute)))
	assert.NoError(t, err)

	// Минутой раньше границы: отклоняется
	_, err = uc.Execute(context.Background(), validRequest(now.Add(59*time.Minute)))
	assert.ErrorIs(t, err, ErrTooLateToBook)

	// За пределами maxAdvanceDays: отклоняется
	_, err = uc.Execute(context.Background(), validRequest(now.AddDate(0, 0, 31)))
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)
}

func TestExecute_DailyLimit(t *testing.T) {
	now := monday
	cfg := bookingConfig()
	cfg.MaxDailyBookings = 2

	repo := newMemBookingRepo(now)
	uc := newBookingUseCase(freeAccount(), cfg, repo, now)

	_, err := uc.Execute(context.Background(), validRequest(monday.Add(9*time.Hour)))
	require.NoError(t, err)
	_, err = uc.Execute(context.Background(), validRequest(monday.Add(11*time.Hour)))
	require.NoError(t, err)

	// Третье бронирование в тот же день упирается в лимит
	_, err = uc.Execute(context.Background(), validRequest(monday.Add(13*time.Hour)))
	assert.ErrorIs(t, err, ErrDailyLimitReached)

	// Отмена освобождает место
	repo.mu.Lock()
	repo.bookings[0].Status = domain.StatusCancelled
	repo.mu.Unlock()

	_, err = uc.Execute(context.Background(), validRequest(monday.Add(13*time.Hour)))
	assert.NoError(t, err)
}

func TestExecute_MonthlyLimit(t *testing.T) {
	now := monday
	account := freeAccount()
	account.MaxBookingsPerMonth = 2

	repo := newMemBookingRepo(now)
	uc := newBookingUseCase(account, bookingConfig(), repo, now)

	_, err := uc.Execute(context.Background(), validRequest(monday.Add(9*time.Hour)))
	require.NoError(t, err)
	_, err = uc.Execute(context.Background(), validRequest(monday.AddDate(0, 0, 1).Add(9*time.Hour)))
	require.NoError(t, err)

	// Квота тарифа исчерпана, день визита не важен
	_, err = uc.Execute(context.Background(), validRequest(monday.AddDate(0, 0, 2).Add(9*time.Hour)))
	assert.ErrorIs(t, err, ErrMonthlyLimitReached)
}

func TestExecute_MonthlyLimitProBypass(t *testing.T) {
	now := monday
	account := freeAccount()
	account.Plan = domain.PlanPro
	account.MaxBookingsPerMonth = 1

	repo := newMemBookingRepo(now)
	uc := newBookingUseCase(account, bookingConfig(), repo, now)

	_, err := uc.Execute(context.Background(), validRequest(monday.Add(9*time.Hour)))
	require.NoError(t, err)

	// Тариф pro не ограничен месячной квотой
	_, err = uc.Execute(context.Background(), validRequest(monday.AddDate(0, 0, 1).Add(9*time.Hour)))
	assert.NoError(t, err)
}

func TestExecute_SlotConflict(t *testing.T) {
	now := monday
	repo := newMemBookingRepo(now)
	uc := newBookingUseCase(freeAccount(), bookingConfig(), repo, now)

	_, err := uc.Execute(context.Background(), validRequest(monday.Add(10*time.Hour)))
	require.NoError(t, err)

	// Тот же слот
	_, err = uc.Execute(context.Background(), validRequest(monday.Add(10*time.Hour)))
	assert.ErrorIs(t, err, ErrSlotConflict)

	// Частичное пересечение
	_, err = uc.Execute(context.Background(), validRequest(monday.Add(10*time.Hour+15*time.Minute)))
	assert.ErrorIs(t, err, ErrSlotConflict)

	// Примыкающий встык слот проходит
	_, err = uc.Execute(context.Background(), validRequest(monday.Add(10*time.Hour+30*time.Minute)))
	assert.NoError(t, err)
}

func TestExecute_ConcurrentSameSlot(t *testing.T) {
	now := monday
	repo := newMemBookingRepo(now)
	uc := newBookingUseCase(freeAccount(), bookingConfig(), repo, now)

	const workers = 8
	start := monday.Add(10 * time.Hour)

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Разные адреса, чтобы не упереться в rate limit
			ip := fmt.Sprintf("203.0.113.%d", i+1)
			req := validRequest(start)
			req.CustomerIP = &ip
			_, errs[i] = uc.Execute(context.Background(), req)
		}(i)
	}
	wg.Wait()

	success := 0
	conflicts := 0
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		default:
			require.ErrorIs(t, err, ErrSlotConflict)
			conflicts++
		}
	}

	assert.Equal(t, 1, success)
	assert.Equal(t, workers-1, conflicts)
	assert.Len(t, repo.bookings, 1)
}

func TestExecute_RandomSequenceNoActiveOverlap(t *testing.T) {
	now := monday
	cfg := bookingConfig()
	cfg.MaxDailyBookings = 100

	account := freeAccount()
	account.Plan = domain.PlanPro

	repo := newMemBookingRepo(now)
	uc := newBookingUseCase(account, cfg, repo, now)

	rng := rand.New(rand.NewSource(1))

	// Случайная последовательность запросов с произвольными минутами
	// старта вперемешку с отменами случайных бронирований
	for i := 0; i < 300; i++ {
		if rng.Intn(4) == 0 {
			repo.mu.Lock()
			if len(repo.bookings) > 0 {
				repo.bookings[rng.Intn(len(repo.bookings))].Status = domain.StatusCancelled
			}
			repo.mu.Unlock()
			continue
		}

		day := rng.Intn(5)
		minute := rng.Intn(12 * 60)
		start := monday.AddDate(0, 0, day).Add(9 * time.Hour).Add(time.Duration(minute) * time.Minute)

		ip := fmt.Sprintf("203.0.113.%d", rng.Intn(250)+1)
		req := validRequest(start)
		req.CustomerIP = &ip

		if _, err := uc.Execute(context.Background(), req); err != nil {
			if !errors.Is(err, ErrSlotConflict) && !errors.Is(err, ErrRateLimited) {
				t.Fatalf("unexpected error on attempt %d: %v", i, err)
			}
		}
	}

	// Инвариант: никакие два активных бронирования не пересекаются
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var active []*domain.Booking
	for _, b := range repo.bookings {
		if b.IsActive() {
			active = append(active, b)
		}
	}
	require.NotEmpty(t, active)

	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			assert.False(t, active[i].Overlaps(active[j].AppointmentStart, active[j].End()),
				"bookings %s and %s overlap",
				active[i].AppointmentStart.Format(time.RFC3339),
				active[j].AppointmentStart.Format(time.RFC3339))
		}
	}
}

func TestExecute_RateLimited(t *testing.T) {
	now := monday
	repo := newMemBookingRepo(now)
	uc := newBookingUseCase(freeAccount(), bookingConfig(), repo, now)

	// 5 попыток с одного адреса в течение часа
	for i := 0; i < domain.RateLimitMaxAttempts; i++ {
		start := monday.Add(time.Duration(9+i) * time.Hour)
		_, err := uc.Execute(context.Background(), validRequest(start))
		require.NoError(t, err)
	}

	_, err := uc.Execute(context.Background(), validRequest(monday.Add(16*time.Hour)))
	assert.ErrorIs(t, err, ErrRateLimited)

	// Другой адрес не затронут
	req := validRequest(monday.Add(16 * time.Hour))
	other := "198.51.100.1"
	req.CustomerIP = &other
	_, err = uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestExecute_IdempotentReplay(t *testing.T) {
	now := monday
	repo := newMemBookingRepo(now)
	uc := newBookingUseCase(freeAccount(), bookingConfig(), repo, now)

	key := "client-key-1"
	req := validRequest(monday.Add(10 * time.Hour))
	req.IdempotencyKey = &key

	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	// Повтор с тем же ключом возвращает исходное бронирование без вставки
	replay, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Reference, replay.Reference)
	assert.Len(t, repo.bookings, 1)
}

func TestExecute_Validation(t *testing.T) {
	now := monday
	repo := newMemBookingRepo(now)
	uc := newBookingUseCase(freeAccount(), bookingConfig(), repo, now)

	cases := []struct {
		name   string
		mutate func(*Request)
	}{
		{"empty first name", func(r *Request) { r.FirstName = "  " }},
		{"long last name", func(r *Request) { r.LastName = strings.Repeat("x", 101) }},
		{"short phone", func(r *Request) { r.Phone = "12345" }},
		{"long phone", func(r *Request) { r.Phone = strings.Repeat("1", 21) }},
		{"long notes", func(r *Request) {
			notes := strings.Repeat("n", 501)
			r.Notes = &notes
		}},
		{"zero start", func(r *Request) { r.AppointmentStart = time.Time{} }},
		{"empty idempotency key", func(r *Request) {
			empty := ""
			r.IdempotencyKey = &empty
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest(monday.Add(10 * time.Hour))
			tc.mutate(req)
			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
