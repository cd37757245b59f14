package metafile

import (
	"os"
	"sync"
	"time"
)

// DefaultCacheCapacity is the number of parsed metafiles the service keeps
const DefaultCacheCapacity = 32

// MetafileCache is a thread-safe least recently used cache of parsed
// metafiles keyed by path. An entry is only served while the file's size and
// modification time are unchanged.
type MetafileCache struct {
	mutex    sync.Mutex
	capacity int
	items    map[string]*cacheNode
	head     *cacheNode // most recently used
	tail     *cacheNode // least recently used
	hits     int64
	misses   int64
}

type cacheNode struct {
	key     string
	size    int64
	modTime time.Time
	src     *source
	prev    *cacheNode
	next    *cacheNode
}

// NewMetafileCache creates a cache holding at most capacity metafiles
func NewMetafileCache(capacity int) *MetafileCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}

	c := &MetafileCache{
		capacity: capacity,
		items:    make(map[string]*cacheNode),
		head:     &cacheNode{},
		tail:     &cacheNode{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// get returns the cached metafile for path if info still describes it. A
// stale entry is dropped.
func (c *MetafileCache) get(path string, info os.FileInfo) (*source, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	node, ok := c.items[path]
	if !ok {
		c.misses++
		return nil, false
	}
	if node.size != info.Size() || !node.modTime.Equal(info.ModTime()) {
		c.removeNode(node)
		delete(c.items, path)
		c.misses++
		return nil, false
	}

	c.moveToFront(node)
	c.hits++
	return node.src, true
}

// put stores src under path, evicting the least recently used entry when full
func (c *MetafileCache) put(path string, src *source) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if node, ok := c.items[path]; ok {
		node.size, node.modTime, node.src = src.info.Size(), src.info.ModTime(), src
		c.moveToFront(node)
		return
	}

	node := &cacheNode{
		key:     path,
		size:    src.info.Size(),
		modTime: src.info.ModTime(),
		src:     src,
	}
	c.addToFront(node)
	c.items[path] = node

	if len(c.items) > c.capacity {
		lru := c.tail.prev
		c.removeNode(lru)
		delete(c.items, lru.key)
	}
}

// Clear removes every entry and resets the counters
func (c *MetafileCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[string]*cacheNode)
	c.head.next = c.tail
	c.tail.prev = c.head
	c.hits = 0
	c.misses = 0
}

// Keys returns the cached paths from most to least recently used
func (c *MetafileCache) Keys() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	keys := make([]string, 0, len(c.items))
	for n := c.head.next; n != c.tail; n = n.next {
		keys = append(keys, n.key)
	}
	return keys
}

// Stats returns cache statistics
func (c *MetafileCache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	hitRate := float64(0)
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total) * 100
	}

	return CacheStats{
		Hits:     c.hits,
		Misses:   c.misses,
		HitRate:  hitRate,
		Size:     len(c.items),
		Capacity: c.capacity,
	}
}

func (c *MetafileCache) moveToFront(node *cacheNode) {
	c.removeNode(node)
	c.addToFront(node)
}

func (c *MetafileCache) addToFront(node *cacheNode) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

func (c *MetafileCache) removeNode(node *cacheNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}

// CacheStats provides statistics about cache performance
type CacheStats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate_percent"`
	Size     int     `json:"current_size"`
	Capacity int     `json:"max_capacity"`
}
