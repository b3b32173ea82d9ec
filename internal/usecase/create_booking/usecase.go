package create_booking

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
	storageAccount "github.com/m04kA/SMC-WidgetBookingService/internal/infra/storage/account"
	storageConfig "github.com/m04kA/SMC-WidgetBookingService/internal/infra/storage/scheduleconfig"
)

// UseCase use case для создания бронирования
type UseCase struct {
	accountRepo  AccountRepository
	configRepo   ConfigRepository
	bookingRepo  BookingRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	accountRepo AccountRepository,
	configRepo ConfigRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		accountRepo:  accountRepo,
		configRepo:   configRepo,
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования.
// Проверки лимитов до транзакции носят рекомендательный характер;
// окончательную защиту от гонок дает сериализуемая транзакция с
// блокировкой пересекающихся бронирований
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: widget=%s, start=%s", req.WidgetID, req.AppointmentStart.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем аккаунт по идентификатору виджета
	account, err := uc.accountRepo.GetByWidgetID(ctx, req.WidgetID)
	if err != nil {
		if errors.Is(err, storageAccount.ErrAccountNotFound) {
			uc.logger.Warn("CreateBooking: widget %s not found", req.WidgetID)
			return nil, ErrAccountNotFound
		}
		uc.logger.Error("CreateBooking: failed to get account: widget=%s: %v", req.WidgetID, err)
		return nil, fmt.Errorf("%w: failed to get account: %v", ErrInternal, err)
	}

	// 4. Получаем конфигурацию расписания
	cfg, err := uc.configRepo.GetByAccountID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, storageConfig.ErrConfigNotFound) {
			uc.logger.Warn("CreateBooking: no schedule config for account id=%d", account.ID)
			return nil, ErrConfigNotFound
		}
		uc.logger.Error("CreateBooking: failed to get schedule config: account id=%d: %v", account.ID, err)
		return nil, fmt.Errorf("%w: failed to get schedule config: %v", ErrInternal, err)
	}

	// 5. Rate limiting: считаем попытки бронирования с этого адреса
	// на этот аккаунт за скользящий час
	if req.CustomerIP != nil {
		attempts, err := uc.bookingRepo.CountRecentAttemptsByIP(ctx, account.ID, *req.CustomerIP, now.Add(-domain.RateLimitWindow))
		if err != nil {
			uc.logger.Error("CreateBooking: failed to count recent attempts: account id=%d: %v", account.ID, err)
			return nil, fmt.Errorf("%w: failed to count recent attempts: %v", ErrInternal, err)
		}
		if attempts >= domain.RateLimitMaxAttempts {
			uc.logger.Warn("CreateBooking: rate limit exceeded: account id=%d, ip=%s, attempts=%d",
				account.ID, *req.CustomerIP, attempts)
			return nil, ErrRateLimited
		}
	}

	// 6. Проверяем окно бронирования [minAdvance, maxAdvanceDays]
	if err := validateAdvanceWindow(req.AppointmentStart, now, cfg); err != nil {
		uc.logger.Warn("CreateBooking: advance window check failed: %v", err)
		return nil, err
	}

	// 7. Дневной лимит: активные бронирования на календарный день слота
	// в таймзоне аккаунта
	dayStart := startOfDay(req.AppointmentStart, cfg.Location)
	dailyCount, err := uc.bookingRepo.CountActiveBetween(ctx, account.ID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		uc.logger.Error("CreateBooking: failed to count daily bookings: account id=%d: %v", account.ID, err)
		return nil, fmt.Errorf("%w: failed to count daily bookings: %v", ErrInternal, err)
	}
	if dailyCount >= cfg.MaxDailyBookings {
		uc.logger.Warn("CreateBooking: daily limit reached: account id=%d, %d/%d",
			account.ID, dailyCount, cfg.MaxDailyBookings)
		return nil, fmt.Errorf("%w: %d bookings allowed per day", ErrDailyLimitReached, cfg.MaxDailyBookings)
	}

	// 8. Месячная квота тарифа: считается по дате создания, а не по дате
	// визита. Тарифы pro и enterprise без ограничений
	if !account.Plan.HasUnlimitedMonthlyBookings() {
		monthStart := startOfMonth(now, cfg.Location)
		monthlyCount, err := uc.bookingRepo.CountActiveCreatedBetween(ctx, account.ID, monthStart, monthStart.AddDate(0, 1, 0))
		if err != nil {
			uc.logger.Error("CreateBooking: failed to count monthly bookings: account id=%d: %v", account.ID, err)
			return nil, fmt.Errorf("%w: failed to count monthly bookings: %v", ErrInternal, err)
		}
		if monthlyCount >= account.MaxBookingsPerMonth {
			uc.logger.Warn("CreateBooking: monthly limit reached: account id=%d, %d/%d",
				account.ID, monthlyCount, account.MaxBookingsPerMonth)
			return nil, fmt.Errorf("%w: plan allows %d bookings per month", ErrMonthlyLimitReached, account.MaxBookingsPerMonth)
		}
	}

	// Переменная для хранения результата
	var result *domain.Booking

	// 9. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 9.1. Идемпотентность: блокируем ключ; если ключ уже
		// финализирован, возвращаем сохраненное бронирование без вставки
		if req.IdempotencyKey != nil {
			existingID, err := uc.bookingRepo.LockIdempotencyKey(txCtx, account.ID, *req.IdempotencyKey)
			if err != nil {
				uc.logger.Error("CreateBooking: failed to lock idempotency key: %v", err)
				return fmt.Errorf("%w: failed to lock idempotency key: %v", ErrInternal, err)
			}
			if existingID != nil {
				existing, err := uc.bookingRepo.GetByID(txCtx, *existingID)
				if err != nil {
					uc.logger.Error("CreateBooking: failed to replay booking id=%d: %v", *existingID, err)
					return fmt.Errorf("%w: failed to replay booking: %v", ErrInternal, err)
				}
				uc.logger.Info("CreateBooking: idempotent replay: booking id=%d", existing.ID)
				result = existing
				return nil
			}
		}

		// 9.2. Повторяем проверку окна со свежим временем: между
		// пре-проверкой и транзакцией могла пройти граница minAdvance
		if err := validateAdvanceWindow(req.AppointmentStart, uc.timeProvider.Now(), cfg); err != nil {
			uc.logger.Warn("CreateBooking: advance window re-check failed: %v", err)
			return err
		}

		slotEnd := req.AppointmentStart.Add(cfg.SlotDuration())

		// 9.3. Загружаем активные бронирования в окне
		// [start - duration, start + duration] с блокировкой (FOR UPDATE)
		windowFrom := req.AppointmentStart.Add(-cfg.SlotDuration())
		windowTo := req.AppointmentStart.Add(cfg.SlotDuration())

		bookings, err := uc.bookingRepo.ListActiveInRange(txCtx, account.ID, windowFrom, windowTo)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to list bookings for overlap check: %v", err)
			return fmt.Errorf("%w: failed to list bookings: %v", ErrInternal, err)
		}

		// 9.4. Проверяем пересечение слота
		if hasOverlap(req.AppointmentStart, slotEnd, bookings) {
			uc.logger.Warn("CreateBooking: slot conflict: account id=%d, start=%s",
				account.ID, req.AppointmentStart.Format(time.RFC3339))
			return ErrSlotConflict
		}

		// 9.5. Создаем бронирование
		booking := &domain.Booking{
			AccountID:         account.ID,
			Reference:         newBookingReference(),
			CustomerFirstName: strings.TrimSpace(req.FirstName),
			CustomerLastName:  strings.TrimSpace(req.LastName),
			CustomerPhone:     strings.TrimSpace(req.Phone),
			CustomerNotes:     req.Notes,
			AppointmentStart:  req.AppointmentStart,
			DurationMinutes:   cfg.SlotDurationMinutes,
			Status:            domain.StatusActive,
			CustomerIP:        req.CustomerIP,
			CustomerAgent:     req.UserAgent,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		// 9.6. Привязываем ключ идемпотентности к созданному бронированию
		if req.IdempotencyKey != nil {
			if err := uc.bookingRepo.FinalizeIdempotencyKey(txCtx, account.ID, *req.IdempotencyKey, created.ID); err != nil {
				uc.logger.Error("CreateBooking: failed to finalize idempotency key: %v", err)
				return fmt.Errorf("%w: failed to finalize idempotency key: %v", ErrInternal, err)
			}
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, reference=%s", result.ID, result.Reference)

	return &Response{
		Reference:        result.Reference,
		FirstName:        result.CustomerFirstName,
		LastName:         result.CustomerLastName,
		Phone:            result.CustomerPhone,
		Notes:            result.CustomerNotes,
		AppointmentStart: result.AppointmentStart,
		DurationMinutes:  result.DurationMinutes,
		Status:           string(result.Status),
		CreatedAt:        result.CreatedAt,
	}, nil
}

// newBookingReference генерирует опаковый ключ бронирования вида BK-3F2A91C04B7D.
// UUID как источник энтропии, наружу уходят первые 6 байт
func newBookingReference() string {
	u := uuid.New()
	return "BK-" + strings.ToUpper(hex.EncodeToString(u[:6]))
}

// startOfDay обнуляет время суток в указанной таймзоне
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// startOfMonth возвращает начало календарного месяца в указанной таймзоне
func startOfMonth(t time.Time, loc *time.Location) time.Time {
	y, m, _ := t.In(loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, loc)
}
