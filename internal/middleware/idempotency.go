package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"oauth2_server/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const idempotencyTTL = 24 * time.Hour

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) GetBytes(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	} else if err != nil {
		logger.Logger.Error("Redis get error", zap.Error(err))
		return nil, false
	}
	return val, true
}

func (c *RedisCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logger.Logger.Error("Redis set error", zap.Error(err))
	}
}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated Idempotency-Key so
// retried creation requests do not mint duplicate records. Only successful
// responses are cached.
func Idempotency(cache *RedisCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			logger.Logger.Info("Get idempotency key", zap.String("key", key))

			if cached, ok := cache.GetBytes(r.Context(), "idempotency:"+key); ok {
				var resp cachedResponse
				if err := json.Unmarshal(cached, &resp); err != nil {
					logger.Logger.Error("Failed to unmarshal cached response", zap.Error(err))
					next.ServeHTTP(w, r)
					return
				}
				logger.Logger.Info("Returning cached response", zap.String("key", key))
				if resp.ContentType != "" {
					w.Header().Set("Content-Type", resp.ContentType)
				}
				w.WriteHeader(resp.Status)
				w.Write(resp.Body)
				return
			}

			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(cw, r)

			if cw.status >= 200 && cw.status < 300 {
				data, err := json.Marshal(cachedResponse{
					Status:      cw.status,
					ContentType: cw.Header().Get("Content-Type"),
					Body:        cw.buf.Bytes(),
				})
				if err != nil {
					logger.Logger.Error("Failed to marshal response for cache", zap.Error(err))
					return
				}
				cache.SetBytes(r.Context(), "idempotency:"+key, data, idempotencyTTL)
				logger.Logger.Info("Successfully set idempotency data by key", zap.String("key", key))
			}
		})
	}
}
