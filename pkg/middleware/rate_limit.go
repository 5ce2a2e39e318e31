package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"restobook/pkg/logger"

	"golang.org/x/time/rate"
)

const (
	PhoneHeader      = "X-Phone-Number"
	CodeRateLimited  = "RATE_LIMITED"
	reservationsPath = "/api/v1/reservations/"
)

type PhoneExtractor func(r *http.Request) string

type phoneBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PhoneRateLimiter gives every phone number a token bucket holding limit
// requests and refilling completely over window.
type PhoneRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*phoneBucket
	every     rate.Limit
	burst     int
	window    time.Duration
	extractor PhoneExtractor
	log       *logger.Logger
	now       func() time.Time
	stopCh    chan struct{}
	once      sync.Once
}

func NewPhoneRateLimiter(limit int, window time.Duration, extractor PhoneExtractor, log *logger.Logger) *PhoneRateLimiter {
	if extractor == nil {
		extractor = headerPhone
	}
	rl := &PhoneRateLimiter{
		buckets:   make(map[string]*phoneBucket),
		every:     rate.Every(window / time.Duration(limit)),
		burst:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
	go rl.evictIdle()
	return rl
}

// Wait reports how long phone must wait before its next request is accepted.
// Zero means the request is admitted and a token is spent.
func (rl *PhoneRateLimiter) Wait(phone string) time.Duration {
	now := rl.now()

	rl.mu.Lock()
	b, ok := rl.buckets[phone]
	if !ok {
		b = &phoneBucket{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.buckets[phone] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()

	res := b.limiter.ReserveN(now, 1)
	delay := res.DelayFrom(now)
	if delay > 0 {
		res.CancelAt(now)
	}
	return delay
}

func (rl *PhoneRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

// evictIdle drops buckets untouched for a whole window; they are full again anyway.
func (rl *PhoneRateLimiter) evictIdle() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := rl.now().Add(-rl.window)
			rl.mu.Lock()
			for phone, b := range rl.buckets {
				if b.lastSeen.Before(cutoff) {
					delete(rl.buckets, phone)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *PhoneRateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// PhoneRateLimit throttles requests per customer phone. Requests without a
// phone pass through untouched.
func PhoneRateLimit(rl *PhoneRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			phone := rl.extractor(r)
			if phone == "" {
				next.ServeHTTP(w, r)
				return
			}

			if wait := rl.Wait(phone); wait > 0 {
				rl.log.Warn("Rate limit exceeded",
					"request_id", requestIDFrom(r),
					"phone", phone,
					"path", r.URL.Path,
					"retry_after", wait,
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				reject(w, http.StatusTooManyRequests, CodeRateLimited, "Too many requests for this phone number")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func headerPhone(r *http.Request) string {
	return r.Header.Get(PhoneHeader)
}

// ReservationPhoneExtractor prefers the X-Phone-Number header and falls back
// to the phone segment of /api/v1/reservations/:phone/:date.
func ReservationPhoneExtractor(r *http.Request) string {
	if phone := headerPhone(r); phone != "" {
		return phone
	}
	rest, ok := strings.CutPrefix(r.URL.Path, reservationsPath)
	if !ok {
		return ""
	}
	phone, _, _ := strings.Cut(rest, "/")
	return phone
}
