package rexec

import (
	"sort"
	"sync"
)

// Cache remembers which hosts were reachable when they were last probed,
// together with the login name observed on them. It is safe for
// concurrent use.
type Cache struct {
	mu    sync.RWMutex
	hosts map[string]string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		hosts: make(map[string]string),
	}
}

// Lookup returns the login observed on host and whether host is cached.
func (c *Cache) Lookup(host string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	login, ok := c.hosts[host]
	return login, ok
}

// Store marks host as reachable.
func (c *Cache) Store(host, login string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hosts[host] = login
}

// Invalidate forgets host, so that the next probe contacts it again.
func (c *Cache) Invalidate(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.hosts, host)
}

// Hosts returns the cached hosts in lexical order.
func (c *Cache) Hosts() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hosts := make([]string, 0, len(c.hosts))
	for host := range c.hosts {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	return hosts
}
