package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/nurtura-health/nurtura-backend/internal/database"
	"github.com/nurtura-health/nurtura-backend/pkg/clientip"
)

const (
	// SubmissionRateLimitWindow is the window for public clinic application
	// submissions
	SubmissionRateLimitWindow = 15 * time.Minute
	// SubmissionRateLimitMax is the maximum submissions per IP per window
	SubmissionRateLimitMax = 10
	// SubmissionRateLimitKeyPrefix is the Redis key prefix
	SubmissionRateLimitKeyPrefix = "ratelimit:clinic_application:"
)

// PublicSubmissionRateLimit limits the unauthenticated clinic application
// endpoint to 10 requests per 15 minutes per IP, counted in Redis so the
// limit holds across instances. Redis failures fail open.
func PublicSubmissionRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ipAddress := clientip.RealClientIP(r)
		ctx := context.Background()
		key := SubmissionRateLimitKeyPrefix + ipAddress

		count, err := database.RedisClient.Incr(ctx, key).Result()
		if err != nil {
			// If Redis fails, allow the request (fail open)
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			database.RedisClient.Expire(ctx, key, SubmissionRateLimitWindow)
		}

		if count > SubmissionRateLimitMax {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(fmt.Sprintf(`{"success":false,"message":"Too many applications from this address. Please try again later.","retry_after":%d}`, int(SubmissionRateLimitWindow.Seconds()))))
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(SubmissionRateLimitMax))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(SubmissionRateLimitMax-count, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(SubmissionRateLimitWindow).Unix(), 10))

		next.ServeHTTP(w, r)
	})
}
