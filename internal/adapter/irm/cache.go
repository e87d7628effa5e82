package irm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"OutreachSync/internal/interfaces"
	"OutreachSync/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache 映射查询的 Redis 读穿缓存，ttl 即映射答案的新鲜度窗口。
// 只缓存成功的答案（包括"无映射"），查询失败不写缓存；Redis 不可用时直接回源。
type Cache struct {
	base   interfaces.MappingClient
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCache 创建缓存装饰器
func NewCache(base interfaces.MappingClient, client *redis.Client, ttl time.Duration, logger *logrus.Logger) *Cache {
	if base == nil {
		panic("irm.NewCache: base client is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl, logger: logger}
}

type cachedAnswer struct {
	ID    string `json:"id"`
	Found bool   `json:"found"`
}

func institutionKey(companyID, institutionID string) string {
	return "irm:mapping:" + companyID + ":institution:" + institutionID
}

func groupKey(companyID, groupID string) string {
	return "irm:mapping:" + companyID + ":group:" + groupID
}

func (c *Cache) GroupForInstitution(ctx context.Context, companyID, institutionID string) (string, bool, error) {
	key := institutionKey(companyID, institutionID)
	if a, ok := c.load(ctx, key); ok {
		return a.ID, a.Found, nil
	}
	id, found, err := c.base.GroupForInstitution(ctx, companyID, institutionID)
	if err != nil {
		return "", false, err
	}
	c.store(ctx, key, cachedAnswer{ID: id, Found: found})
	return id, found, nil
}

func (c *Cache) InstitutionForGroup(ctx context.Context, companyID, groupID string) (string, bool, error) {
	key := groupKey(companyID, groupID)
	if a, ok := c.load(ctx, key); ok {
		return a.ID, a.Found, nil
	}
	id, found, err := c.base.InstitutionForGroup(ctx, companyID, groupID)
	if err != nil {
		return "", false, err
	}
	c.store(ctx, key, cachedAnswer{ID: id, Found: found})
	return id, found, nil
}

func (c *Cache) load(ctx context.Context, key string) (cachedAnswer, bool) {
	if c.redis == nil || c.ttl == 0 {
		return cachedAnswer{}, false
	}
	payload, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.MappingCacheTotal.WithLabelValues("miss").Inc()
		} else {
			metrics.MappingCacheTotal.WithLabelValues("error").Inc()
			c.logger.WithError(err).WithField("key", key).Warn("映射缓存读取失败，回源查询")
		}
		return cachedAnswer{}, false
	}
	var a cachedAnswer
	if err := json.Unmarshal(payload, &a); err != nil {
		metrics.MappingCacheTotal.WithLabelValues("error").Inc()
		return cachedAnswer{}, false
	}
	metrics.MappingCacheTotal.WithLabelValues("hit").Inc()
	return a, true
}

func (c *Cache) store(ctx context.Context, key string, a cachedAnswer) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("映射缓存写入失败")
	}
}

// Invalidate 删除某机构/股东组的缓存答案
func (c *Cache) Invalidate(ctx context.Context, companyID, institutionID, groupID string) error {
	if c.redis == nil {
		return nil
	}
	var keys []string
	if institutionID != "" {
		keys = append(keys, institutionKey(companyID, institutionID))
	}
	if groupID != "" {
		keys = append(keys, groupKey(companyID, groupID))
	}
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...).Err()
}

// Uncached 返回底层客户端，用于写后复核
func (c *Cache) Uncached() interfaces.MappingClient { return c.base }
