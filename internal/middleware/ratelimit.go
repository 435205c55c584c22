package middleware

import (
	"strconv"
	"sync/atomic"
	"time"

	"ResumeSense/internal/apperror"

	"github.com/gin-gonic/gin"
	limit "github.com/yangxikun/gin-limit-by-key"
	"golang.org/x/time/rate"
)

// gin-limit-by-key 는 limiter 캐시를 패키지 전역으로 공유
var limiterSeq atomic.Uint64

// PerUserRateLimit allows perMinute requests per authenticated user (client
// IP for anonymous requests) with a burst of the same size. Idle limiters are
// evicted after an hour.
func PerUserRateLimit(perMinute int) gin.HandlerFunc {
	every := time.Minute / time.Duration(perMinute)
	prefix := "rl" + strconv.FormatUint(limiterSeq.Add(1), 10) + ":"
	return limit.NewRateLimiter(
		func(c *gin.Context) string {
			if id := c.GetString(ContextUserID); id != "" {
				return prefix + "user:" + id
			}
			return prefix + "ip:" + c.ClientIP()
		},
		func(c *gin.Context) (*rate.Limiter, time.Duration) {
			return rate.NewLimiter(rate.Every(every), perMinute), time.Hour
		},
		func(c *gin.Context) {
			abort(c, apperror.New(apperror.TypeRateLimited, "Too many uploads, please try again later"))
		},
	)
}
