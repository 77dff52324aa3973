package domain

import "context"

// Ключи кеша — единое место, чтобы не расползались по коду.
func CacheKeyActivityMeta(id ActivityID) string { return "actmeta:" + id.String() }
func CacheKeyActivityList(hash string) string   { return "actlist:" + hash }
func CacheKeyListVersion() string               { return "actlist:ver" }
func CacheKeySummary() string                   { return "report:summary" }
func CacheKeyTokenJTI(jti string) string        { return "jti:" + jti }

// Простой k/v интерфейс. Реализация — Redis.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttlSeconds int) error
	Del(ctx context.Context, keys ...string) error
	// Для инкрементируемых версий списков (выборочная инвалидация)
	Incr(ctx context.Context, key string) (int64, error)
	Ping(context.Context) error
	Close()
}
