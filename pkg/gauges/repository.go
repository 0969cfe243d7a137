package gauges

import (
	"encoding/json"
	"sync"

	"github.com/probeq/profiledb/pkg/capped"
)

// StoreRepository persists gauge point batches as blocks in the capped
// store, one JSON-encoded batch per block. Block ids of recent batches are
// retained in memory so the embedder can page back through history until
// the ring's wrap-around reclaims it.
type StoreRepository struct {
	store *capped.Store

	mu  sync.Mutex
	ids []int64
}

func NewStoreRepository(store *capped.Store) *StoreRepository {
	return &StoreRepository{store: store}
}

// Store writes the batch as one block. Empty batches are skipped. A closing
// store drops the batch silently; gauge data is best-effort by design.
func (r *StoreRepository) Store(points []Point) error {
	if len(points) == 0 {
		return nil
	}
	data, err := json.Marshal(points)
	if err != nil {
		return err
	}
	id, err := r.store.Write(capped.StringSource(data))
	if err != nil {
		return err
	}
	if id == capped.ClosedSentinel {
		return nil
	}
	r.mu.Lock()
	r.ids = append(r.ids, id)
	// drop remembered ids the ring has already reclaimed
	smallest := r.store.SmallestLiveID()
	live := r.ids[:0]
	for _, id := range r.ids {
		if id >= smallest {
			live = append(live, id)
		}
	}
	r.ids = live
	r.mu.Unlock()
	return nil
}

// BatchIDs returns the block ids of the batches still believed live, oldest
// first. Callers must still treat each id as potentially expired.
func (r *StoreRepository) BatchIDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, len(r.ids))
	copy(out, r.ids)
	return out
}

// ReadBatch decodes the batch stored under the given block id. Expired
// batches decode as an empty slice.
func (r *StoreRepository) ReadBatch(id int64) ([]Point, error) {
	reader := r.store.Read(id, "[]")
	defer reader.Close()
	var points []Point
	if err := json.NewDecoder(reader).Decode(&points); err != nil {
		return nil, err
	}
	return points, nil
}
