package filters

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"
	"github.com/sawtooth-seth/rpc/transform"
	"github.com/sawtooth-seth/rpc/types"
)

const DefaultTTL = 5 * time.Minute

// MaxLogRange bounds the blocks a single log query may scan. Polls that fall
// further behind catch up over several calls.
const MaxLogRange = 10000

type Kind int

const (
	LogFilter Kind = iota
	BlockFilter
	// PendingTransactionFilter never reports anything: the validator has
	// no pending pool to observe.
	PendingTransactionFilter
)

func (k Kind) String() string {
	switch k {
	case LogFilter:
		return "log"
	case BlockFilter:
		return "block"
	case PendingTransactionFilter:
		return "pendingTransaction"
	default:
		return "unknown"
	}
}

// Source reads ledger data for filters.
type Source interface {
	HeadNumber(ctx context.Context) (uint64, error)
	// Logs returns the logs of blocks from..to inclusive that match c.
	Logs(ctx context.Context, from, to uint64, c *Criteria) ([]*transform.Log, error)
	// BlockIDs returns the ids of blocks from..to inclusive.
	BlockIDs(ctx context.Context, from, to uint64) ([]string, error)
}

type filter struct {
	kind     Kind
	criteria *Criteria

	mu sync.Mutex
	// cursor is the last block delivered to the caller.
	cursor     uint64
	lastPolled atomic.Int64
}

// Changes is the result of a poll: logs for log filters, block ids for block
// filters.
type Changes struct {
	Logs     []*transform.Log
	BlockIDs []string
	kind     Kind
}

func (c *Changes) Len() int {
	return len(c.Logs) + len(c.BlockIDs)
}

func (c *Changes) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case LogFilter:
		if c.Logs == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(c.Logs)
	default:
		hashes := make([]string, len(c.BlockIDs))
		for i, id := range c.BlockIDs {
			hashes[i] = transform.EncodeID(id)
		}
		return json.Marshal(hashes)
	}
}

// Registry keeps installed filters in memory.
type Registry struct {
	mu      sync.RWMutex
	filters map[string]*filter
	ttl     time.Duration
	now     func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{filters: make(map[string]*filter), ttl: ttl, now: time.Now}
}

func newID() string {
	id := uuid.New()
	return "0x" + hex.EncodeToString(id[:])
}

// Create installs a filter whose cursor starts at the current head.
func (r *Registry) Create(ctx context.Context, kind Kind, criteria *Criteria, src Source) (string, error) {
	head, err := src.HeadNumber(ctx)
	if err != nil {
		return "", err
	}
	if criteria == nil {
		criteria = &Criteria{FromBlock: rpc.LatestBlockNumber, ToBlock: rpc.LatestBlockNumber}
	}
	f := &filter{kind: kind, criteria: criteria, cursor: head}
	f.lastPolled.Store(r.now().UnixNano())

	r.mu.Lock()
	defer r.mu.Unlock()
	id := newID()
	for r.filters[id] != nil {
		id = newID()
	}
	r.filters[id] = f
	filtersInstalled().Inc()
	return id, nil
}

func (r *Registry) get(id string) (*filter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.filters[id]
	if !ok {
		return nil, types.ErrFilterNotFound
	}
	return f, nil
}

// Poll returns what appeared since the previous poll and advances the
// cursor to the current head, or by MaxLogRange blocks when it lags further
// behind. Concurrent polls of one filter are serialized; a failed poll
// leaves the cursor in place.
func (r *Registry) Poll(ctx context.Context, id string, src Source) (*Changes, error) {
	f, err := r.get(id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPolled.Store(r.now().UnixNano())

	changes := &Changes{kind: f.kind}
	if f.kind == PendingTransactionFilter {
		return changes, nil
	}
	head, err := src.HeadNumber(ctx)
	if err != nil {
		return nil, err
	}
	if head <= f.cursor {
		return changes, nil
	}

	end := head
	if end-f.cursor > MaxLogRange {
		end = f.cursor + MaxLogRange
	}

	switch f.kind {
	case BlockFilter:
		if changes.BlockIDs, err = src.BlockIDs(ctx, f.cursor+1, end); err != nil {
			return nil, err
		}
	case LogFilter:
		from, to := f.cursor+1, end
		if n := f.criteria.FromBlock; n >= 0 && uint64(n) > from {
			from = uint64(n)
		}
		if n := f.criteria.ToBlock; n >= 0 && uint64(n) < to {
			to = uint64(n)
		}
		if from <= to {
			if changes.Logs, err = src.Logs(ctx, from, to, f.criteria); err != nil {
				return nil, err
			}
		}
	}
	f.cursor = end
	return changes, nil
}

// Logs evaluates the whole range of a log filter without moving its cursor.
func (r *Registry) Logs(ctx context.Context, id string, src Source) ([]*transform.Log, error) {
	f, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if f.kind != LogFilter {
		return nil, types.ErrFilterNotFound
	}
	f.lastPolled.Store(r.now().UnixNano())
	return Query(ctx, f.criteria, src)
}

// Query runs criteria once against src. Criteria naming a block id search
// that block alone.
func Query(ctx context.Context, c *Criteria, src Source) ([]*transform.Log, error) {
	if c.BlockID != "" {
		return src.Logs(ctx, 0, 0, c)
	}
	head, err := src.HeadNumber(ctx)
	if err != nil {
		return nil, err
	}
	from, to := c.Range(head)
	if from > to {
		return []*transform.Log{}, nil
	}
	return src.Logs(ctx, from, to, c)
}

// Remove uninstalls a filter, reporting whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.filters[id]; !ok {
		return false
	}
	delete(r.filters, id)
	filtersInstalled().Dec()
	return true
}

// Expire removes filters not polled within the TTL and returns how many.
func (r *Registry) Expire(now time.Time) int {
	deadline := now.Add(-r.ttl).UnixNano()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, f := range r.filters {
		if f.lastPolled.Load() < deadline {
			delete(r.filters, id)
			removed++
		}
	}
	filtersInstalled().Sub(float64(removed))
	return removed
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.filters)
}
