package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
	storageAccount "github.com/m04kA/SMC-WidgetBookingService/internal/infra/storage/account"
	storageConfig "github.com/m04kA/SMC-WidgetBookingService/internal/infra/storage/scheduleconfig"
)

// UseCase получение доступных слотов для бронирования
type UseCase struct {
	accountRepo  AccountRepository
	configRepo   ConfigRepository
	bookingRepo  BookingRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	accountRepo AccountRepository,
	configRepo ConfigRepository,
	bookingRepo BookingRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		accountRepo:  accountRepo,
		configRepo:   configRepo,
		bookingRepo:  bookingRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute возвращает доступные слоты виджета в диапазоне дат.
//
// Шаги:
//  1. Валидация запроса (диапазон не длиннее 90 дней)
//  2. Поиск аккаунта по публичному идентификатору виджета
//  3. Загрузка конфигурации расписания
//  4. Генерация слотов-кандидатов из рабочих часов
//  5. Исключение слотов, пересекающихся с активными бронированиями
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: widget=%s, range=%s..%s",
		req.WidgetID, req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем аккаунт по идентификатору виджета
	account, err := uc.accountRepo.GetByWidgetID(ctx, req.WidgetID)
	if err != nil {
		if errors.Is(err, storageAccount.ErrAccountNotFound) {
			uc.logger.Warn("GetAvailableSlots: widget %s not found", req.WidgetID)
			return nil, ErrAccountNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get account: widget=%s: %v", req.WidgetID, err)
		return nil, fmt.Errorf("%w: failed to get account: %v", ErrInternal, err)
	}

	// 4. Получаем конфигурацию расписания
	cfg, err := uc.configRepo.GetByAccountID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, storageConfig.ErrConfigNotFound) {
			uc.logger.Warn("GetAvailableSlots: no schedule config for account id=%d", account.ID)
			return nil, ErrConfigNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get schedule config: account id=%d: %v", account.ID, err)
		return nil, fmt.Errorf("%w: failed to get schedule config: %v", ErrInternal, err)
	}

	// 5. Генерируем слоты-кандидаты из рабочих часов
	candidates, err := generateSlots(cfg, req.StartDate, req.EndDate, now)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate slots: account id=%d: %v", account.ID, err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	// 6. Отсеиваем слоты, занятые активными бронированиями.
	// Бронирования загружаются одним запросом на весь диапазон,
	// пересечения проверяются в памяти
	slots := candidates
	if len(candidates) > 0 {
		from := civilDay(req.StartDate, cfg.Location)
		to := civilDay(req.EndDate, cfg.Location).AddDate(0, 0, 1)

		bookings, err := uc.bookingRepo.ListActiveInRange(ctx, account.ID, from, to)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to list active bookings: account id=%d: %v", account.ID, err)
			return nil, fmt.Errorf("%w: failed to list active bookings: %v", ErrInternal, err)
		}

		slots = filterAvailable(candidates, bookings)
	}

	uc.logger.Info("GetAvailableSlots: widget=%s, candidates=%d, available=%d", req.WidgetID, len(candidates), len(slots))

	return &Response{
		WidgetID: req.WidgetID,
		Timezone: cfg.Timezone,
		Slots:    slots,
	}, nil
}
