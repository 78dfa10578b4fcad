package we

import (
	"context"
)

// ReadOnlyStorage is the view of an instance's state handed to query entry points.
type ReadOnlyStorage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// Storage is the capability handed to instantiate and execute entry points.
// Writes become visible to other calls only once the host commits them.
type Storage interface {
	ReadOnlyStorage
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// State is a snapshot of every key held by a contract instance.
type State struct {
	Address  ContractAddress   `json:"address"`
	Revision Revision          `json:"revision"`
	Values   map[string][]byte `json:"values,omitempty"`
}

func (s State) Initialized() bool {
	return s.Revision != InitialRevision
}

// ChangeSet is the all-or-nothing result of one call. An empty ExpectedRevision
// commits unconditionally.
type ChangeSet struct {
	ExpectedRevision Revision          `json:"expectedRevision,omitempty"`
	Writes           map[string][]byte `json:"writes,omitempty"`
	Removes          []string          `json:"removes,omitempty"`
}

func (c ChangeSet) Empty() bool {
	return len(c.Writes) == 0 && len(c.Removes) == 0
}

func (c ChangeSet) Size() int {
	return len(c.Writes) + len(c.Removes)
}

// Apply folds the change set into values, returning the updated map.
func (c ChangeSet) Apply(values map[string][]byte) map[string][]byte {
	if values == nil {
		values = make(map[string][]byte, len(c.Writes))
	}

	for key, value := range c.Writes {
		values[key] = value
	}

	for _, key := range c.Removes {
		delete(values, key)
	}

	return values
}

// StateStore persists contract instance state. Commit must be atomic and must
// return RevisionConflict when changes.ExpectedRevision is set and stale.
type StateStore interface {
	Load(ctx context.Context, address ContractAddress) (State, error)
	Commit(ctx context.Context, address ContractAddress, changes ChangeSet) (Revision, error)
}

// EmptyState is what stores return for an instance that has never been committed.
func EmptyState(address ContractAddress) State {
	return State{Address: address, Revision: InitialRevision, Values: map[string][]byte{}}
}
