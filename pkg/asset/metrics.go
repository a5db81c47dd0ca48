package asset

import "time"

// Lookup outcomes reported to CacheMetrics.
const (
	LookupHit  = "hit"  // terminal entry already present
	LookupJoin = "join" // joined a load another caller started
	LookupMiss = "miss" // this caller performed the load
)

// CacheMetrics receives cache observations. A nil CacheMetrics disables
// collection.
type CacheMetrics interface {
	// RecordLookup counts an EnsureLoaded call by outcome.
	RecordLookup(outcome string)

	// ObserveLoad records one completed load.
	ObserveLoad(state State, bytes int, duration time.Duration)

	// SetEntries publishes the number of entries per terminal state.
	SetEntries(loaded, failed int)
}
