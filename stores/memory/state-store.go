package memory

import (
	"context"
	"sync"

	"github.com/google/wire"

	"github.com/weegigs/wee-contracts-go/we"
)

var Live = wire.NewSet(
	NewStateStore,
	wire.Bind(new(we.StateStore), new(*StateStore)),
)

type StateStoreOption func(*StateStore)

func WithClock(clock we.Clock) StateStoreOption {
	return func(store *StateStore) {
		store.clock = clock
	}
}

type instance struct {
	revision we.Revision
	values   map[string][]byte
}

// StateStore keeps contract state in process. It is used for local runs and
// tests.
type StateStore struct {
	lk        sync.RWMutex
	instances map[we.ContractAddress]*instance
	revision  *we.RevisionGenerator
	clock     we.Clock
}

func NewStateStore() *StateStore {
	return NewStateStoreWith()
}

func NewStateStoreWith(options ...StateStoreOption) *StateStore {
	store := &StateStore{
		instances: make(map[we.ContractAddress]*instance),
		revision:  we.NewRevisionGenerator(),
	}

	for _, option := range options {
		option(store)
	}

	if store.clock == nil {
		store.clock = we.SystemClock
	}

	return store
}

func (s *StateStore) Load(ctx context.Context, address we.ContractAddress) (we.State, error) {
	if err := ctx.Err(); err != nil {
		return we.State{}, err
	}

	s.lk.RLock()
	defer s.lk.RUnlock()

	current, ok := s.instances[address]
	if !ok {
		return we.EmptyState(address), nil
	}

	values := make(map[string][]byte, len(current.values))
	for key, value := range current.values {
		values[key] = value
	}

	return we.State{Address: address, Revision: current.revision, Values: values}, nil
}

func (s *StateStore) Commit(ctx context.Context, address we.ContractAddress, changes we.ChangeSet) (we.Revision, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.lk.Lock()
	defer s.lk.Unlock()

	current, ok := s.instances[address]
	if !ok {
		current = &instance{revision: we.InitialRevision, values: map[string][]byte{}}
	}

	if changes.ExpectedRevision != "" && changes.ExpectedRevision != current.revision {
		return "", we.RevisionConflict
	}

	values := make(map[string][]byte, len(current.values)+len(changes.Writes))
	for key, value := range current.values {
		values[key] = value
	}
	values = changes.Apply(values)

	revision := s.revision.NewRevision(s.clock.Now())
	s.instances[address] = &instance{revision: revision, values: values}

	return revision, nil
}
