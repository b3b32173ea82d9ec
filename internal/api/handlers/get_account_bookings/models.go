package get_account_bookings

import (
	"strconv"
	"time"

	"github.com/m04kA/SMC-WidgetBookingService/internal/domain"
	"github.com/m04kA/SMC-WidgetBookingService/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(
	accountID int64,
	statusStr string,
	startDateStr string,
	endDateStr string,
	limitStr string,
	offsetStr string,
) (*models.GetAccountBookingsRequest, error) {
	req := &models.GetAccountBookingsRequest{
		AccountID: accountID,
	}

	// Парсим status если указан
	if statusStr != "" {
		req.Status = &statusStr
	}

	// Парсим период если указан
	if startDateStr != "" {
		startDate, err := time.Parse(domain.DateFormat, startDateStr)
		if err != nil {
			return nil, err
		}
		req.StartDate = &startDate
	}

	if endDateStr != "" {
		endDate, err := time.Parse(domain.DateFormat, endDateStr)
		if err != nil {
			return nil, err
		}
		// Конец периода включительно: сдвигаем на следующий день
		endExclusive := endDate.AddDate(0, 0, 1)
		req.EndDate = &endExclusive
	}

	// Парсим пагинацию
	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return nil, strconv.ErrSyntax
		}
		req.Limit = limit
	}

	if offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return nil, strconv.ErrSyntax
		}
		req.Offset = offset
	}

	return req, nil
}
