package expr

import "sync"

// Cache memoizes Parse results keyed by source text. CHECK expressions are
// parsed once per distinct source and then evaluated many times across rows
// (§9: "a concurrent-safe read-mostly map is acceptable").
type Cache struct {
	m sync.Map // string -> *cacheEntry
}

type cacheEntry struct {
	node Node
	err  error
}

// NewCache returns an empty, ready-to-use Cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the parsed AST for src, parsing and storing it on first use.
// A prior parse failure is cached too, so a malformed expression does not
// re-pay the lexer/parser cost on every row.
func (c *Cache) Get(src string) (Node, error) {
	if v, ok := c.m.Load(src); ok {
		e := v.(*cacheEntry)
		return e.node, e.err
	}
	node, err := Parse(src)
	e := &cacheEntry{node: node, err: err}
	actual, _ := c.m.LoadOrStore(src, e)
	a := actual.(*cacheEntry)
	return a.node, a.err
}

// DefaultCache is the package-level cache most callers share.
var DefaultCache = NewCache()
