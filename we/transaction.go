package we

import (
	"context"
	"sort"
)

// View is a read-only Storage over a loaded State.
type View struct {
	state State
}

func NewView(state State) *View {
	return &View{state: state}
}

func (v *View) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := v.state.Values[key]
	return value, ok, nil
}

type change struct {
	value   []byte
	removed bool
}

// Transaction buffers the writes of a single call on top of a loaded State.
// Reads observe the call's own writes. Nothing reaches the store until the
// host commits ChangeSet; dropping the transaction discards the call.
type Transaction struct {
	view    *View
	pending map[string]change
}

func NewTransaction(state State) *Transaction {
	return &Transaction{
		view:    NewView(state),
		pending: make(map[string]change),
	}
}

func (tx *Transaction) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c, ok := tx.pending[key]; ok {
		if c.removed {
			return nil, false, nil
		}
		return c.value, true, nil
	}

	return tx.view.Get(ctx, key)
}

func (tx *Transaction) Set(_ context.Context, key string, value []byte) error {
	copied := make([]byte, len(value))
	copy(copied, value)
	tx.pending[key] = change{value: copied}

	return nil
}

func (tx *Transaction) Remove(_ context.Context, key string) error {
	tx.pending[key] = change{removed: true}

	return nil
}

func (tx *Transaction) ChangeSet() ChangeSet {
	changes := ChangeSet{ExpectedRevision: tx.view.state.Revision}

	for key, c := range tx.pending {
		if c.removed {
			changes.Removes = append(changes.Removes, key)
			continue
		}

		if changes.Writes == nil {
			changes.Writes = make(map[string][]byte, len(tx.pending))
		}
		changes.Writes[key] = c.value
	}
	sort.Strings(changes.Removes)

	return changes
}
