package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/utils"
	"github.com/vpoint-tv/vpoint-api/utils/cache"
	"github.com/vpoint-tv/vpoint-api/utils/response"
)

// BruteForceProtection handles brute force protection using Redis
type BruteForceProtection struct {
	redisCache *cache.RedisCache
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(redisCache *cache.RedisCache) *BruteForceProtection {
	return &BruteForceProtection{
		redisCache: redisCache,
	}
}

func lockKey(ip string) string {
	return fmt.Sprintf("brute_force:lock:%s", ip)
}

func attemptKey(ip string) string {
	return fmt.Sprintf("brute_force:attempts:%s", ip)
}

func operatorKey(name string) string {
	return fmt.Sprintf("brute_force:operator:%s", strings.ToUpper(name))
}

// CheckAndRecordAttempt middleware rejects requests from a locked-out IP
func (b *BruteForceProtection) CheckAndRecordAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := lockKey(c.IP())

		locked, err := b.redisCache.Exists(c.UserContext(), key)
		if err != nil {
			// Redis down: do not block legitimate operators over a cache issue
			utils.Log.WithError(err).Warn("brute force check skipped")
			return c.Next()
		}

		if locked {
			return b.tooMany(c, key)
		}

		return c.Next()
	}
}

func (b *BruteForceProtection) tooMany(c *fiber.Ctx, key string) error {
	ttl, _ := b.redisCache.TTL(c.UserContext(), key)
	retryAfter := int(ttl.Seconds())
	if retryAfter <= 0 {
		retryAfter = 60
	}

	c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", retryAfter))
	return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
}

// lockDuration applies progressive lockouts by attempt count
func lockDuration(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		return 24 * time.Hour
	case attempts >= 10:
		return time.Hour
	case attempts >= 5:
		return 2 * time.Minute
	default:
		return 0
	}
}

// RecordFailedAttempt counts a failed login for both the IP and the operator
// name, locking the IP once the thresholds are crossed.
func (b *BruteForceProtection) RecordFailedAttempt(c *fiber.Ctx, ip, name string) error {
	ctx := c.UserContext()

	attempts, err := b.redisCache.Increment(ctx, attemptKey(ip))
	if err != nil {
		return nil
	}
	if attempts == 1 {
		b.redisCache.Expire(ctx, attemptKey(ip), 15*time.Minute)
	}

	if name != "" {
		if n, err := b.redisCache.Increment(ctx, operatorKey(name)); err == nil && n == 1 {
			b.redisCache.Expire(ctx, operatorKey(name), 15*time.Minute)
		}
	}

	if d := lockDuration(attempts); d > 0 {
		utils.Log.WithFields(map[string]interface{}{
			"ip":       ip,
			"attempts": attempts,
			"lock":     d.String(),
		}).Warn("login locked out")
		return b.redisCache.Set(ctx, lockKey(ip), "locked", d)
	}
	return nil
}

// RecordSuccessfulAttempt clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccessfulAttempt(c *fiber.Ctx, ip, name string) error {
	return b.redisCache.Delete(c.UserContext(), attemptKey(ip), lockKey(ip), operatorKey(name))
}

// OperatorFailures returns recent failed attempts against an operator name
func (b *BruteForceProtection) OperatorFailures(c *fiber.Ctx, name string) (int, error) {
	val, err := b.redisCache.Get(c.UserContext(), operatorKey(name))
	if err != nil {
		if err == cache.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}

	var count int
	fmt.Sscanf(val, "%d", &count)
	return count, nil
}
