package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache 读穿缓存：域名解析结果和商城设置按TTL缓存，更新时显式失效。
// 不在进程内保存任何可变状态，多实例之间不会出现失效不同步。
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedisCache 创建Redis缓存实例
func NewRedisCache(config *Config) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "msp:cache"
	}

	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    config.TTL,
	}
}

// Close 关闭Redis连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping 测试Redis连接
func (c *RedisCache) Ping() error {
	ctx := context.Background()
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) key(name string) string {
	return c.prefix + ":" + name
}

// GetJSON 读取缓存并反序列化到dest，未命中返回false
func (c *RedisCache) GetJSON(ctx context.Context, name string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.key(name)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// 缓存内容损坏按未命中处理，同时清掉坏数据
		c.client.Del(ctx, c.key(name))
		return false, nil
	}
	return true, nil
}

// SetJSON 按默认TTL写入缓存
func (c *RedisCache) SetJSON(ctx context.Context, name string, value interface{}) error {
	if c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(name), data, c.ttl).Err()
}

// Delete 显式失效
func (c *RedisCache) Delete(ctx context.Context, names ...string) error {
	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, c.key(name))
	}
	return c.client.Del(ctx, keys...).Err()
}

// ========== 事件发布/订阅 ==========

// Publish 向频道发布JSON消息
func (c *RedisCache) Publish(ctx context.Context, channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, c.key(channel), data).Err()
}

// Subscribe 订阅频道
func (c *RedisCache) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return c.client.Subscribe(ctx, c.key(channel))
}
