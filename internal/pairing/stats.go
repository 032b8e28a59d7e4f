package pairing

import "sync/atomic"

// Stats is a snapshot of issuer counters since process start.
type Stats struct {
	Issued      uint64 `json:"issued"`
	Collisions  uint64 `json:"collisions"`
	Exhausted   uint64 `json:"exhausted"`
	CacheErrors uint64 `json:"cache_errors"`
	Consumed    uint64 `json:"consumed"`
}

type counters struct {
	issued      atomic.Uint64
	collisions  atomic.Uint64
	exhausted   atomic.Uint64
	cacheErrors atomic.Uint64
	consumed    atomic.Uint64
}

// Stats returns the current counter values.
func (i *Issuer) Stats() Stats {
	return Stats{
		Issued:      i.stats.issued.Load(),
		Collisions:  i.stats.collisions.Load(),
		Exhausted:   i.stats.exhausted.Load(),
		CacheErrors: i.stats.cacheErrors.Load(),
		Consumed:    i.stats.consumed.Load(),
	}
}
