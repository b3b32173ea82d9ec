package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-WidgetBookingService/pkg/metrics"
)

// statusRecorder перехватывает статус ответа для метрик
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// MetricsMiddleware собирает HTTP-метрики: количество запросов,
// длительность и число запросов в обработке.
// В качестве path используется шаблон роута, а не сырой URL,
// чтобы не раздувать кардинальность метрик
func MetricsMiddleware(m *metrics.Metrics, serviceName string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			path := routeTemplate(r)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// routeTemplate возвращает шаблон роута вида /api/v1/widget/{widgetId}/book
func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unknown"
	}

	template, err := route.GetPathTemplate()
	if err != nil {
		return "unknown"
	}

	return template
}
