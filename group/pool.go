package group

import "sync"

// ScratchPool provides reusable slice buffers for the point/scalar
// accumulation every showing and issuance proof does — each request
// builds several slices of a dozen-odd terms for MultiMul, and under
// issuer load those allocations dominate GC pressure. This mirrors the
// teacher corpus's ObjectPool, narrowed to the two slice shapes this
// module actually needs.
type ScratchPool struct {
	points  sync.Pool
	scalars sync.Pool
}

// NewScratchPool creates an empty pool. The zero value is also usable;
// NewScratchPool exists for symmetry with callers that want an
// explicit constructor.
func NewScratchPool() *ScratchPool {
	return &ScratchPool{}
}

// DefaultPool is a package-level pool for the common case of a
// single-threaded issuer processing one request at a time (per §5's
// concurrency model). No package in this module draws from it or from
// any other ScratchPool; callers that shard issuer state across
// goroutines should construct their own pool per shard instead of
// sharing this one, to avoid false contention on the sync.Pool's
// internal sharding.
var DefaultPool = NewScratchPool()

// GetPoints borrows a zero-length []*Point with capacity at least n.
func (p *ScratchPool) GetPoints(n int) []*Point {
	if v := p.points.Get(); v != nil {
		s := v.([]*Point)[:0]
		if cap(s) >= n {
			return s
		}
	}
	return make([]*Point, 0, n)
}

// PutPoints returns a slice borrowed from GetPoints.
func (p *ScratchPool) PutPoints(s []*Point) {
	p.points.Put(s[:0]) //nolint:staticcheck // intentional: reuse backing array
}

// GetScalars borrows a zero-length []*Scalar with capacity at least n.
func (p *ScratchPool) GetScalars(n int) []*Scalar {
	if v := p.scalars.Get(); v != nil {
		s := v.([]*Scalar)[:0]
		if cap(s) >= n {
			return s
		}
	}
	return make([]*Scalar, 0, n)
}

// PutScalars returns a slice borrowed from GetScalars.
func (p *ScratchPool) PutScalars(s []*Scalar) {
	p.scalars.Put(s[:0]) //nolint:staticcheck // intentional: reuse backing array
}
