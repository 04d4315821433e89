package catalog

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DatasetSource 原始课程数据来源（由 dataset 包的文件加载器实现）
type DatasetSource interface {
	LoadCourses(termID string) (RawCoursesBySchool, error)
}

// Cache 按学期的索引缓存
// 同一学期同一时刻至多一次构建在途：外层互斥锁只保护槽位表，
// 槽位各自持锁串行化构建，不同学期互不阻塞
// 构建失败不缓存，下次请求重试
type Cache struct {
	source DatasetSource
	logger *zap.Logger

	mu    sync.Mutex
	slots map[string]*cacheSlot
}

type cacheSlot struct {
	mu  sync.Mutex
	idx *Index
}

// NewCache 创建索引缓存
func NewCache(source DatasetSource, logger *zap.Logger) *Cache {
	return &Cache{
		source: source,
		logger: logger,
		slots:  make(map[string]*cacheSlot),
	}
}

// GetOrBuild 取指定学期的索引，缓存未命中时加载原始数据并构建
// 并发请求同一学期时后来者在槽位锁上等待，复用先行者的构建结果
func (c *Cache) GetOrBuild(termID string) (*Index, error) {
	c.mu.Lock()
	slot, ok := c.slots[termID]
	if !ok {
		slot = &cacheSlot{}
		c.slots[termID] = slot
	}
	c.mu.Unlock()

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.idx != nil {
		return slot.idx, nil
	}

	start := time.Now()
	raw, err := c.source.LoadCourses(termID)
	if err != nil {
		c.logger.Warn("加载学期课程数据失败",
			zap.String("term_id", termID),
			zap.Error(err))
		return nil, err
	}

	idx := BuildIndex(raw)
	slot.idx = idx

	c.logger.Info("课程索引构建完成",
		zap.String("term_id", termID),
		zap.Int("courses", len(idx.courses)),
		zap.Int("codes", len(idx.detailsByCode)),
		zap.Duration("elapsed", time.Since(start)))
	return idx, nil
}

// Reset 清除指定学期的缓存索引，下次请求重新构建
func (c *Cache) Reset(termID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.slots, termID)
}

// ResetAll 清空全部学期缓存
func (c *Cache) ResetAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = make(map[string]*cacheSlot)
}
