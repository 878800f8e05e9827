package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taitaima2ma2-pixel/lesson-app/config"
)

// Client Redis クライアントのラッパー
// 現状は回答状況ボードのキャッシュに使用。接続できない環境では nil のまま
// 運用され、呼び出し側はキャッシュなしで動作する。
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient Redis に接続し Ping で疎通確認する
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 接続に失敗: %w", err)
	}

	logger.Info("Redis 接続成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 汎用 JSON キャッシュ ──

// GetJSON キーに対応する JSON 文字列を取得する。キーが無ければ ("", false)
func (c *Client) GetJSON(ctx context.Context, key string) (string, bool) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warn("キャッシュ取得に失敗", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return val, true
}

// SetJSON JSON 文字列を TTL 付きで保存する。失敗してもエラーにはしない
func (c *Client) SetJSON(ctx context.Context, key, val string, ttl time.Duration) {
	if err := c.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		c.logger.Warn("キャッシュ保存に失敗", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate キーを削除する
func (c *Client) Invalidate(ctx context.Context, keys ...string) {
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("キャッシュ削除に失敗", zap.Error(err))
	}
}

// ── レート制限 ──

// CheckRateLimit 固定ウィンドウ方式のレート制限。window 内の呼び出し回数が
// limit を超えたら false を返す
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

// Close Redis 接続を閉じる
func (c *Client) Close() error {
	return c.rdb.Close()
}
