package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-WidgetBookingService/internal/api/handlers"
)

const msgRateLimitExceeded = "rate limit exceeded"

// ipLimiter токен-бакет одного клиента с отметкой последнего обращения
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter грубый пер-IP ограничитель на входе в публичный роутер.
// Защищает от потока запросов с одного адреса до того, как запрос
// дойдет до бизнес-логики; бизнес-лимит попыток бронирования
// применяется отдельно внутри use case
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter

	rps   rate.Limit
	burst int
}

// NewRateLimiter создает ограничитель: rps запросов в секунду
// с всплесками до burst
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*ipLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}

	// Фоновая чистка неактивных клиентов
	go rl.cleanup()

	return rl
}

// Middleware возвращает mux-совместимый обработчик
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(requestIP(r)) {
			w.Header().Set("Retry-After", "1")
			handlers.RespondError(w, http.StatusTooManyRequests, msgRateLimitExceeded)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[ip] = l
	}
	l.lastSeen = time.Now()

	return l.limiter.Allow()
}

// cleanup раз в минуту удаляет лимитеры клиентов, молчащих больше 10 минут
func (rl *RateLimiter) cleanup() {
	for range time.Tick(time.Minute) {
		rl.mu.Lock()
		for ip, l := range rl.limiters {
			if time.Since(l.lastSeen) > 10*time.Minute {
				delete(rl.limiters, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// requestIP извлекает адрес клиента: первый адрес из X-Forwarded-For,
// иначе RemoteAddr без порта
func requestIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
