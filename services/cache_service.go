package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"rentkart_server/config"
	"rentkart_server/database"
	"rentkart_server/structs"
	"rentkart_server/structs/tables"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
	redisCtx    = context.Background()
)

// CacheService provides Redis caching functionality with connection pooling and retry logic
type CacheService struct {
	logger *gecho.Logger
	config *structs.Config
	client *redis.Client
}

func NewCacheService(logger *gecho.Logger, cfg *structs.Config) *CacheService {
	return &CacheService{
		logger: logger,
		config: cfg,
		client: getRedisClient(),
	}
}

// getRedisClient returns a singleton Redis client with proper connection pooling
func getRedisClient() *redis.Client {
	redisOnce.Do(func() {
		cfg := config.GetConfig()
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Address,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,

			// Connection pool settings
			PoolSize:        cfg.Cache.PoolSize,
			MinIdleConns:    cfg.Cache.MinIdleConns,
			MaxIdleConns:    cfg.Cache.MaxIdleConns,
			PoolTimeout:     cfg.Cache.PoolTimeout,
			ConnMaxIdleTime: cfg.Cache.IdleTimeout,

			// Timeouts
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,

			// Retry settings
			MaxRetries:      cfg.Cache.MaxRetries,
			MinRetryBackoff: cfg.Cache.MinRetryBackoff,
			MaxRetryBackoff: cfg.Cache.MaxRetryBackoff,
		})
	})
	return redisClient
}

// Close closes the Redis connection pool
func (cs *CacheService) Close() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}

// withRetry executes a Redis operation with exponential backoff retry logic
func (cs *CacheService) withRetry(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt == maxRetries {
			break
		}

		// Only retry on network/connection errors, not on logical errors like key not found
		if !isRetryableRedisError(err) {
			return err
		}

		maxBackoff := 2000 // max 2000ms = 2s
		base := 100        // 100ms base

		backoff := base * (1 << attempt) // exponential
		backoff = min(backoff, maxBackoff)

		// add jitter ±50%
		jitterBytes := make([]byte, 4)
		_, err = rand.Read(jitterBytes)
		if err != nil {
			// fallback to no jitter if random fails
			time.Sleep(time.Duration(backoff) * time.Millisecond)
			continue
		}
		jitter := int(uint32(jitterBytes[0])<<24 | uint32(jitterBytes[1])<<16 | uint32(jitterBytes[2])<<8 | uint32(jitterBytes[3]))

		jitter = jitter % (backoff/2 + 1)
		backoffWithJitter := backoff/2 + jitter

		time.Sleep(time.Duration(backoffWithJitter) * time.Millisecond)
	}

	return fmt.Errorf("redis operation failed after %d retries: %w", maxRetries, lastErr)
}

// isRetryableRedisError determines if an error is worth retrying
func isRetryableRedisError(err error) bool {
	if err == nil {
		return false
	}

	// Don't retry on nil results (key not found)
	if err == redis.Nil {
		return false
	}

	errStr := err.Error()
	retryableErrors := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"broken pipe",
		"no such host",
		"network is unreachable",
	}

	for _, retryableErr := range retryableErrors {
		if strings.Contains(errStr, retryableErr) {
			return true
		}
	}

	return false
}

// Set sets a key with TTL and automatic retry logic
func (cs *CacheService) Set(key string, value any, ttl time.Duration) error {
	return cs.withRetry(func() error {
		return cs.client.Set(redisCtx, key, value, ttl).Err()
	}, 3)
}

// Get retrieves a key with automatic retry logic
func (cs *CacheService) Get(key string) (string, error) {
	var result string

	err := cs.withRetry(func() error {
		val, err := cs.client.Get(redisCtx, key).Result()
		if err == redis.Nil {
			result = ""
			return nil // Don't retry on key not found
		}
		if err != nil {
			return err
		}
		result = val
		return nil
	}, 3)

	if err != nil {
		return "", err
	}

	return result, nil
}

// Delete removes a key with automatic retry logic
func (cs *CacheService) Delete(key string) error {
	return cs.withRetry(func() error {
		return cs.client.Del(redisCtx, key).Err()
	}, 3)
}

// Exists checks if a key exists with automatic retry logic
func (cs *CacheService) Exists(key string) (bool, error) {
	var result bool

	err := cs.withRetry(func() error {
		count, err := cs.client.Exists(redisCtx, key).Result()
		if err != nil {
			return err
		}
		result = count > 0
		return nil
	}, 3)

	return result, err
}

// BlacklistToken adds a token's jti to the blacklist with expiration and retry logic
func (cs *CacheService) BlacklistToken(jti uuid.UUID, exp time.Time) error {
	ttl := cs.config.Auth.BlacklistCacheTTL
	if exp.After(time.Now()) {
		ttl = time.Until(exp)
	}

	key := fmt.Sprintf("blacklist:%s", jti)
	return cs.Set(key, "true", ttl)
}

// IsTokenBlacklisted checks if a JTI exists in Redis with retry logic
func (cs *CacheService) IsTokenBlacklisted(jti uuid.UUID) (bool, error) {
	key := fmt.Sprintf("blacklist:%s", jti.String())
	val, err := cs.Get(key)
	if err != nil {
		return false, err
	}

	return val == "true", nil
}

// GetUserFromCache retrieves a user object from cache using userID
func (cs *CacheService) GetUserFromCache(userID uuid.UUID) (*tables.User, error) {
	key := fmt.Sprintf("user:%s", userID.String())
	return getJSON[tables.User](cs, key)
}

// SetUserInCache stores a user object in cache with TTL
func (cs *CacheService) SetUserInCache(user *tables.User) error {
	if user == nil {
		// Nothing to cache
		return nil
	}
	key := fmt.Sprintf("user:%s", user.Id.String())
	return setJSON(cs, key, user, cs.config.Auth.CacheUserTTL)
}

// InvalidateUserCache removes a user object from cache
func (cs *CacheService) InvalidateUserCache(userID uuid.UUID) error {
	key := fmt.Sprintf("user:%s", userID.String())
	return cs.Delete(key)
}

// IncrementRateLimit atomically increments a rate limit counter
func (cs *CacheService) IncrementRateLimit(ip, endpoint string, ttl time.Duration) (int, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", ip, endpoint)

	var result int64
	err := cs.withRetry(func() error {
		val, err := cs.client.Incr(redisCtx, key).Result()
		if err != nil {
			return err
		}
		result = val

		// Set expiration only on first increment
		if val == 1 {
			return cs.client.Expire(redisCtx, key, ttl).Err()
		}

		return nil
	}, 3)

	return int(result), err
}

// GetRateLimitStatus returns current rate limit information for debugging
func (cs *CacheService) GetRateLimitStatus(ip, endpoint string) (map[string]any, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", ip, endpoint)

	var result map[string]any

	err := cs.withRetry(func() error {
		val, err := cs.client.Get(redisCtx, key).Result()
		if err == redis.Nil {
			result = map[string]any{
				"count": 0,
				"ttl":   0,
			}
			return nil
		}
		if err != nil {
			return err
		}

		ttl, err := cs.client.TTL(redisCtx, key).Result()
		if err != nil {
			return err
		}

		count, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid rate limit value: %w", err)
		}

		result = map[string]any{
			"count": count,
			"ttl":   int(ttl.Seconds()),
		}
		return nil
	}, 3)

	return result, err
}

// Ping tests the Redis connection
func (cs *CacheService) Ping() error {
	return cs.withRetry(func() error {
		return cs.client.Ping(redisCtx).Err()
	}, 3)
}

// GetConnectionStats returns Redis connection pool statistics
func (cs *CacheService) GetConnectionStats() map[string]any {
	stats := cs.client.PoolStats()

	return map[string]any{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
}

// ============================================================================
// Catalog Caching Methods
// ============================================================================

// CatalogPage is the cached unit for a storefront listing: the page's
// rows plus the pagination snapshot taken when it was built. Caching
// only the rows would make a warm hit report the page length as the
// catalog total.
type CatalogPage struct {
	Products   []tables.ProductTemplate `json:"products"`
	Pagination database.Pagination      `json:"pagination"`
}

// GetCatalogPage retrieves a cached storefront catalog page
func (cs *CacheService) GetCatalogPage(filterKey string) (*CatalogPage, error) {
	key := fmt.Sprintf("catalog:page:%s", filterKey)

	page, err := getJSON[CatalogPage](cs, key)
	if err != nil {
		cs.logger.Warn("Failed to get catalog page from cache", gecho.Field("error", err), gecho.Field("key", key))
		return nil, err
	}

	return page, nil
}

// SetCatalogPage caches a storefront catalog page
func (cs *CacheService) SetCatalogPage(filterKey string, page *CatalogPage) error {
	key := fmt.Sprintf("catalog:page:%s", filterKey)
	return setJSON(cs, key, page, cs.getCatalogTTL())
}

// GetTemplateByID retrieves a cached product template by ID
func (cs *CacheService) GetTemplateByID(id uuid.UUID) (*tables.ProductTemplate, error) {
	key := fmt.Sprintf("catalog:template:%s", id.String())

	template, err := getJSON[tables.ProductTemplate](cs, key)
	if err != nil {
		cs.logger.Warn("Failed to get template from cache", gecho.Field("error", err), gecho.Field("id", id))
		return nil, err
	}

	return template, nil
}

// SetTemplateByID caches a product template by ID
func (cs *CacheService) SetTemplateByID(template *tables.ProductTemplate) error {
	key := fmt.Sprintf("catalog:template:%s", template.ID.String())
	return setJSON(cs, key, template, cs.getCatalogTTL())
}

// InvalidateCatalogCaches removes all catalog caches touching the given template.
// Called whenever a vendor creates, updates, or deletes a product.
func (cs *CacheService) InvalidateCatalogCaches(templateID uuid.UUID) error {
	if err := cs.Delete(fmt.Sprintf("catalog:template:%s", templateID.String())); err != nil {
		cs.logger.Warn("Failed to delete template cache", gecho.Field("template_id", templateID), gecho.Field("error", err))
	}

	// Catalog pages may contain this template in any position
	if err := cs.DeletePattern("catalog:page:*"); err != nil {
		cs.logger.Warn("Failed to delete catalog page caches", gecho.Field("error", err))
		return err
	}

	return nil
}

// ============================================================================
// OTP Cooldown
// ============================================================================

// MarkOTPSent records that a verification code was just sent to the address.
// Returns false if a code was already sent within the cooldown window.
func (cs *CacheService) MarkOTPSent(email string, cooldown time.Duration) (bool, error) {
	key := fmt.Sprintf("otp:cooldown:%s", strings.ToLower(email))

	var acquired bool
	err := cs.withRetry(func() error {
		ok, err := cs.client.SetNX(redisCtx, key, "1", cooldown).Result()
		if err != nil {
			return err
		}
		acquired = ok
		return nil
	}, 3)

	return acquired, err
}

// ============================================================================
// Order Event Pub/Sub
// ============================================================================

// OrderItemEvent is published whenever a draft's items change, so open
// storefront tabs can refresh the cart without polling.
type OrderItemEvent struct {
	OrderId   uuid.UUID `json:"order_id"`
	Action    string    `json:"action"` // "added", "removed", "status"
	ProductId uuid.UUID `json:"product_id,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	Status    string    `json:"status,omitempty"`
	At        time.Time `json:"at"`
}

func orderEventChannel(orderID uuid.UUID) string {
	return fmt.Sprintf("order:%s:items", orderID.String())
}

// PublishOrderEvent publishes an order item event to the order's channel
func (cs *CacheService) PublishOrderEvent(event *OrderItemEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return cs.withRetry(func() error {
		return cs.client.Publish(redisCtx, orderEventChannel(event.OrderId), payload).Err()
	}, 3)
}

// SubscribeOrderEvents subscribes to an order's item event channel.
// The caller owns the returned subscription and must close it.
func (cs *CacheService) SubscribeOrderEvents(ctx context.Context, orderID uuid.UUID) *redis.PubSub {
	return cs.client.Subscribe(ctx, orderEventChannel(orderID))
}

// ============================================================================
// Helper Methods
// ============================================================================

// DeletePattern removes all keys matching a pattern using SCAN
func (cs *CacheService) DeletePattern(pattern string) error {
	return cs.withRetry(func() error {
		var cursor uint64

		for {
			keys, nextCursor, err := cs.client.Scan(redisCtx, cursor, pattern, 100).Result()
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			if len(keys) > 0 {
				if err := cs.client.Del(redisCtx, keys...).Err(); err != nil {
					return fmt.Errorf("delete failed: %w", err)
				}
			}

			cursor = nextCursor
			if cursor == 0 {
				break
			}
		}

		return nil
	}, 3)
}

func (cs *CacheService) ClearAll() error {
	return cs.withRetry(func() error {
		return cs.client.FlushDB(redisCtx).Err()
	}, 3)
}

// getCatalogTTL returns the TTL for catalog caches from config
func (cs *CacheService) getCatalogTTL() time.Duration {
	if cs.config.Cache.CatalogTTL > 0 {
		return cs.config.Cache.CatalogTTL
	}
	return 5 * time.Minute // fallback default
}

func setJSON[T any](cs *CacheService, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return cs.Set(key, data, ttl)
}

func getJSON[T any](cs *CacheService, key string) (*T, error) {
	val, err := cs.Get(key)
	if err != nil {
		return nil, err
	}

	if val == "" {
		return nil, nil // not found in cache
	}

	var result T
	err = json.Unmarshal([]byte(val), &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}
