package resolve

import "container/list"

// lruCache is a fixed-capacity least-recently-used cache for resolved
// locations. Not safe for concurrent use; the Resolver serializes access.
type lruCache struct {
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

type lruEntry struct {
	key string
	loc Location
}

func newLRUCache(capacity int) *lruCache {
	return &lruCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

func (c *lruCache) get(key string) (Location, bool) {
	el, ok := c.items[key]
	if !ok {
		return Location{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).loc, true
}

func (c *lruCache) put(key string, loc Location) {
	if el, ok := c.items[key]; ok {
		el.Value.(*lruEntry).loc = loc
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&lruEntry{key: key, loc: loc})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruEntry).key)
	}
}
