package cache

// Hierarchy is a two-level data cache in front of memory with a fixed latency.
// Both levels allocate on every miss.
type Hierarchy struct {
	L1            *Cache
	L2            *Cache
	MemoryLatency uint64
}

// DefaultMemoryLatency is the main memory latency behind the L2.
const DefaultMemoryLatency = 100

// NewHierarchy creates an L1/L2 hierarchy.
func NewHierarchy(l1, l2 Config, memoryLatency uint64) *Hierarchy {
	return &Hierarchy{
		L1:            New(l1),
		L2:            New(l2),
		MemoryLatency: memoryLatency,
	}
}

// AccessLatency returns the latency of the access through both levels. Writes
// complete at L1 hit latency once the line is allocated.
func (h *Hierarchy) AccessLatency(addr uint64, isWrite bool) uint64 {
	var l1 AccessResult
	if isWrite {
		l1 = h.L1.Write(addr)
	} else {
		l1 = h.L1.Read(addr)
	}

	if l1.Hit {
		return l1.Latency
	}

	lat := h.L1.Config().HitLatency
	l2 := h.L2.Read(addr)
	lat += h.L2.Config().HitLatency
	if !l2.Hit {
		lat += h.MemoryLatency
	}

	if isWrite {
		return h.L1.Config().HitLatency
	}
	return lat
}
