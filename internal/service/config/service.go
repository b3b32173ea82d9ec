package config

import (
	"context"
	"errors"
	"fmt"

	storageAccount "github.com/m04kA/SMC-WidgetBookingService/internal/infra/storage/account"
	storageConfig "github.com/m04kA/SMC-WidgetBookingService/internal/infra/storage/scheduleconfig"
	"github.com/m04kA/SMC-WidgetBookingService/internal/service/config/models"
)

// Service сервис для чтения публичной конфигурации виджета
type Service struct {
	accountRepo AccountRepository
	configRepo  ConfigRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса конфигурации
func NewService(
	accountRepo AccountRepository,
	configRepo ConfigRepository,
	logger Logger,
) *Service {
	return &Service{
		accountRepo: accountRepo,
		configRepo:  configRepo,
		logger:      logger,
	}
}

// GetWidgetConfig возвращает публичное подмножество конфигурации по
// идентификатору виджета. Эндпоинт не требует аутентификации, поэтому
// наружу уходят только поля, нужные для отрисовки виджета
func (s *Service) GetWidgetConfig(ctx context.Context, widgetID string) (*models.WidgetConfigResponse, error) {
	s.logger.Info("GetWidgetConfig: fetching config for widget=%s", widgetID)

	if widgetID == "" {
		return nil, fmt.Errorf("%w: widgetID is required", ErrInvalidInput)
	}

	account, err := s.accountRepo.GetByWidgetID(ctx, widgetID)
	if err != nil {
		if errors.Is(err, storageAccount.ErrAccountNotFound) {
			s.logger.Warn("GetWidgetConfig: widget %s not found", widgetID)
			return nil, ErrAccountNotFound
		}
		s.logger.Error("GetWidgetConfig: failed to get account: widget=%s: %v", widgetID, err)
		return nil, fmt.Errorf("%w: failed to get account: %v", ErrInternal, err)
	}

	cfg, err := s.configRepo.GetByAccountID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, storageConfig.ErrConfigNotFound) {
			s.logger.Warn("GetWidgetConfig: no schedule config for account id=%d", account.ID)
			return nil, ErrConfigNotFound
		}
		s.logger.Error("GetWidgetConfig: failed to get schedule config: account id=%d: %v", account.ID, err)
		return nil, fmt.Errorf("%w: failed to get schedule config: %v", ErrInternal, err)
	}

	return models.FromDomain(account, cfg), nil
}
