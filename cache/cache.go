package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/jsonsage/schema"
)

// Config 缓存配置
type Config struct {
	MaxSize int           // 最大条目数
	TTL     time.Duration // 条目存活时间，不随访问续期
}

// DefaultConfig 默认配置：1000 条，24 小时
func DefaultConfig() Config {
	return Config{
		MaxSize: 1000,
		TTL:     24 * time.Hour,
	}
}

// Entry 缓存条目，写入后不再原地修改
type Entry struct {
	Value     *schema.Schema
	CreatedAt time.Time
	seq       uint64 // 插入序号，CreatedAt 相同时按先插入者淘汰
}

// Stats 缓存统计
type Stats struct {
	Entries     int    `json:"entries"`
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
}

// SchemaCache 按容量和 TTL 限制的 schema 缓存。
// 过期惰性生效：读到过期条目时删除并视为未命中。容量满时插入新 key，
// 淘汰 CreatedAt 最早的条目（线性扫描）。所有操作同步且不会失败。
type SchemaCache struct {
	mu     sync.Mutex
	cfg    Config
	items  map[string]*Entry
	seq    uint64
	now    func() time.Time
	logger *zap.Logger
	stats  Stats
}

// Option 配置 SchemaCache
type Option func(*SchemaCache)

// WithClock 替换时钟，便于测试
func WithClock(now func() time.Time) Option {
	return func(c *SchemaCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(c *SchemaCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New 创建缓存。非正数的 MaxSize/TTL 使用默认值。
func New(cfg Config, opts ...Option) *SchemaCache {
	def := DefaultConfig()
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = def.MaxSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	c := &SchemaCache{
		cfg:    cfg,
		items:  make(map[string]*Entry),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("component", "schema_cache"))
	return c
}

// Config returns the effective configuration.
func (c *SchemaCache) Config() Config { return c.cfg }

// Get 返回 key 对应 schema 的副本
func (c *SchemaCache) Get(key string) (*schema.Schema, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	if c.expired(e, c.now()) {
		delete(c.items, key)
		c.stats.Expirations++
		c.stats.Misses++
		c.logger.Debug("cache entry expired", zap.String("key", key))
		return nil, false
	}
	c.stats.Hits++
	return e.Value.Clone(), true
}

// Set 写入或整体替换条目
func (c *SchemaCache) Set(key string, value *schema.Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.cfg.MaxSize {
		c.evictOldest()
	}
	c.seq++
	c.items[key] = &Entry{
		Value:     value.Clone(),
		CreatedAt: c.now(),
		seq:       c.seq,
	}
}

// Cleanup 清除所有过期条目，返回清除数量。可重复调用。
func (c *SchemaCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.items {
		if c.expired(e, now) {
			delete(c.items, key)
			removed++
		}
	}
	c.stats.Expirations += uint64(removed)
	if removed > 0 {
		c.logger.Debug("cache cleanup", zap.Int("removed", removed), zap.Int("remaining", len(c.items)))
	}
	return removed
}

// Len 返回当前条目数（含尚未清理的过期条目）
func (c *SchemaCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats 返回统计快照
func (c *SchemaCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.items)
	return s
}

func (c *SchemaCache) expired(e *Entry, now time.Time) bool {
	return now.Sub(e.CreatedAt) > c.cfg.TTL
}

// evictOldest 淘汰 CreatedAt 最早的条目，调用方持有锁
func (c *SchemaCache) evictOldest() {
	var (
		oldestKey string
		oldest    *Entry
	)
	for key, e := range c.items {
		if oldest == nil ||
			e.CreatedAt.Before(oldest.CreatedAt) ||
			(e.CreatedAt.Equal(oldest.CreatedAt) && e.seq < oldest.seq) {
			oldestKey, oldest = key, e
		}
	}
	if oldest == nil {
		return
	}
	delete(c.items, oldestKey)
	c.stats.Evictions++
	c.logger.Debug("cache entry evicted", zap.String("key", oldestKey))
}
