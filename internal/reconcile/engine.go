package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"laundry-state-backend/internal/model"
)

// ErrPersistenceRejected is returned when the store refuses the write that
// would complete a reconciliation. Nothing is partially applied; the caller
// may retry the whole reconciliation from a fresh lookup.
var ErrPersistenceRejected = errors.New("store rejected machine write")

// attributionJumpMinutes is the threshold above which a rise in remaining
// time is taken to mean a new user started a fresh cycle, so the snapshot's
// own attribution is discarded in favor of the unknown sentinel.
const attributionJumpMinutes = 5

// MachineStore is the persistence contract the engine writes through. A nil
// record with a nil error from GetMachine means the machine has never been
// seen; that is the create precondition, not a failure.
type MachineStore interface {
	GetMachine(ctx context.Context, opaqueID string) (*model.Machine, error)
	UpsertMachine(ctx context.Context, m *model.Machine) error
}

// Outcome reports what a reconciliation did to the stored record.
type Outcome int

const (
	Unchanged Outcome = iota
	Created
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

// keyedMutex hands out one mutex per machine identifier so that
// reconciliations of the same machine serialize while distinct machines
// proceed in parallel.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	return l
}

// Engine decides, per incoming snapshot, whether the machine is new, its
// state is unchanged, or a transition must be applied. It is the sole
// writer of machine records.
type Engine struct {
	store MachineStore
	locks *keyedMutex
	now   func() time.Time
}

// NewEngine creates an engine writing through the given store.
func NewEngine(store MachineStore) *Engine {
	return &Engine{
		store: store,
		locks: newKeyedMutex(),
		now:   time.Now,
	}
}

// Reconcile looks up the stored record for the snapshot's machine and either
// creates it, overwrites it, or leaves it alone:
//
//   - First sighting: the record is created from the snapshot verbatim with
//     LastUser set to the unknown sentinel.
//   - Equal timeRemaining: no field is written and LastUpdated is not
//     touched. timeRemaining is the only change signal; attribute-only
//     changes arriving alongside an unchanged timeRemaining are intentionally
//     not detected.
//   - Differing timeRemaining: the full snapshot overwrites the record and
//     LastUpdated is refreshed. A rise of more than attributionJumpMinutes
//     discards the snapshot's attribution for the unknown sentinel; any
//     other delta passes the snapshot's attribution through.
//
// The lookup and write are serialized per opaque identifier; snapshots for
// distinct machines never block each other.
func (e *Engine) Reconcile(ctx context.Context, snap Snapshot) (Outcome, error) {
	lock := e.locks.get(snap.OpaqueID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := e.store.GetMachine(ctx, snap.OpaqueID)
	if err != nil {
		return Unchanged, fmt.Errorf("lookup machine %s: %w", snap.OpaqueID, err)
	}

	if existing == nil {
		rec := snap.record()
		rec.LastUpdated = e.now()
		rec.LastUser = model.UnknownUser
		if err := e.store.UpsertMachine(ctx, &rec); err != nil {
			return Unchanged, fmt.Errorf("create machine %s: %w: %v", snap.OpaqueID, ErrPersistenceRejected, err)
		}
		return Created, nil
	}

	if snap.TimeRemaining == existing.TimeRemaining {
		return Unchanged, nil
	}

	rec := snap.record()
	rec.LastUpdated = e.now()
	if snap.TimeRemaining-existing.TimeRemaining > attributionJumpMinutes {
		rec.LastUser = model.UnknownUser
	}
	if err := e.store.UpsertMachine(ctx, &rec); err != nil {
		return Unchanged, fmt.Errorf("update machine %s: %w: %v", snap.OpaqueID, ErrPersistenceRejected, err)
	}
	return Updated, nil
}
