// Package cache provides latency-only cache models built on Akita cache
// components.
//
// No data is stored; a lookup only updates tag and LRU state and reports the
// latency the access would take. The models satisfy exeq.MemorySystem.
package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `json:"size"`
	// Associativity (number of ways)
	Associativity int `json:"associativity"`
	// BlockSize in bytes (cache line size)
	BlockSize int `json:"block_size"`
	// HitLatency in cycles
	HitLatency uint64 `json:"hit_latency"`
	// MissLatency in cycles (includes the next level's access time)
	MissLatency uint64 `json:"miss_latency"`
}

// DefaultConfig returns the default data cache: 8 blocks of 64B, fully
// associative, 2-cycle hit, 20-cycle miss.
func DefaultConfig() Config {
	return Config{
		Size:          8 * 64,
		Associativity: 8,
		BlockSize:     64,
		HitLatency:    2,
		MissLatency:   20,
	}
}

// DefaultL2Config returns the default second-level cache used by Hierarchy.
func DefaultL2Config() Config {
	return Config{
		Size:          256 * 1024,
		Associativity: 8,
		BlockSize:     64,
		HitLatency:    10,
		MissLatency:   10,
	}
}

// Validate checks that the geometry describes at least one set.
func (c Config) Validate() error {
	if c.BlockSize <= 0 || c.Associativity <= 0 || c.Size <= 0 {
		return fmt.Errorf("cache size, associativity and block_size must be > 0")
	}
	if c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("cache size %d is not a multiple of associativity*block_size", c.Size)
	}
	if c.HitLatency == 0 {
		return fmt.Errorf("hit_latency must be > 0")
	}
	return nil
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Latency is the number of cycles this access takes.
	Latency uint64
	// Evicted is true if a valid block was replaced.
	Evicted bool
	// EvictedAddr is the address of the evicted block (if Evicted is true).
	EvictedAddr uint64
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// HitRate returns hits over all accesses.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is an LRU set-associative cache using the Akita cache directory for
// tag and replacement state.
type Cache struct {
	config    Config
	directory *akitacache.DirectoryImpl
	stats     Statistics
}

// New creates a new cache with the given configuration.
func New(config Config) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) blockAddr(addr uint64) uint64 {
	return (addr / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)
}

// Read performs a cache read. A miss allocates the block.
func (c *Cache) Read(addr uint64) AccessResult {
	c.stats.Reads++
	return c.access(addr, false)
}

// Write performs a cache write with write-allocate. Stores retire into a
// write buffer, so the latency is always the hit latency.
func (c *Cache) Write(addr uint64) AccessResult {
	c.stats.Writes++
	result := c.access(addr, true)
	result.Latency = c.config.HitLatency
	return result
}

// Probe reports whether addr is cached without touching LRU state or stats.
func (c *Cache) Probe(addr uint64) bool {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	return block != nil && block.IsValid
}

// AccessLatency performs a read or write and returns only its latency.
func (c *Cache) AccessLatency(addr uint64, isWrite bool) uint64 {
	if isWrite {
		return c.Write(addr).Latency
	}
	return c.Read(addr).Latency
}

func (c *Cache) access(addr uint64, isWrite bool) AccessResult {
	blockAddr := c.blockAddr(addr)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		if isWrite {
			block.IsDirty = true
		}
		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
		}
	}

	c.stats.Misses++
	return c.handleMiss(blockAddr, isWrite)
}

// handleMiss installs the block, replacing the LRU victim of its set.
func (c *Cache) handleMiss(blockAddr uint64, isWrite bool) AccessResult {
	result := AccessResult{
		Hit:     false,
		Latency: c.config.MissLatency,
	}

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return result
	}

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = victim.Tag

		if victim.IsDirty {
			c.stats.Writebacks++
		}
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = isWrite

	c.directory.Visit(victim)

	return result
}

// Invalidate marks a cache line as invalid.
func (c *Cache) Invalidate(addr uint64) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Reset invalidates all cache lines and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
