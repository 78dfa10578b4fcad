package we

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/jaswdr/faker"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
)

var (
	entropyLk sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func NewStateStoreValidationSuite(ctx context.Context, store StateStore) *StateStoreValidationSuite {
	return &StateStoreValidationSuite{
		store: store,
		ctx:   ctx,
		faker: faker.New(),
	}
}

// StateStoreValidationSuite checks the behaviour every StateStore must share.
type StateStoreValidationSuite struct {
	store StateStore
	ctx   context.Context
	faker faker.Faker
}

func (s *StateStoreValidationSuite) Run(t *testing.T) {
	t.Run("loads an initial revision", s.LoadInitial)
	t.Run("commits a single write", s.CommitsSingleWrite)
	t.Run("commits multiple writes in a single change set", s.CommitsMultipleWrites)
	t.Run("overwrites values", s.OverwritesValues)
	t.Run("removes values", s.RemovesValues)
	t.Run("isolates instances", s.IsolatesInstances)
	t.Run("returns a revision conflict with an initial revision", s.RevisionConflictOnInitialRevision)
	t.Run("returns a revision conflict on subsequent revision", s.RevisionConflictOnSubsequentRevision)
	t.Run("commits unconditionally without an expected revision", s.UnconditionalCommit)
	t.Run("leaves state untouched after a conflict", s.ConflictLeavesStateUntouched)
}

func (s *StateStoreValidationSuite) MakeTestAddress() ContractAddress {
	entropyLk.Lock()
	defer entropyLk.Unlock()

	return ContractAddress("test-" + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
}

func (s *StateStoreValidationSuite) MakeTestValue() []byte {
	return []byte(s.faker.Lorem().Sentence(10))
}

func (s *StateStoreValidationSuite) MakeTestWrites(count int) map[string][]byte {
	writes := make(map[string][]byte, count)
	for len(writes) < count {
		writes[fmt.Sprintf("%s-%d", s.faker.Lorem().Word(), len(writes))] = s.MakeTestValue()
	}

	return writes
}

func (s *StateStoreValidationSuite) LoadInitial(t *testing.T) {
	address := s.MakeTestAddress()
	state, err := s.store.Load(s.ctx, address)
	if !assert.Nil(t, err) {
		return
	}

	assert.Empty(t, state.Values)
	assert.Equal(t, InitialRevision, state.Revision)
	assert.Equal(t, address, state.Address)
	assert.False(t, state.Initialized())
}

func (s *StateStoreValidationSuite) CommitsSingleWrite(t *testing.T) {
	address := s.MakeTestAddress()
	value := s.MakeTestValue()

	revision, err := s.store.Commit(s.ctx, address, ChangeSet{
		ExpectedRevision: InitialRevision,
		Writes:           map[string][]byte{"value": value},
	})
	if !assert.Nil(t, err) {
		return
	}
	assert.NotEqual(t, InitialRevision, revision)

	state, err := s.store.Load(s.ctx, address)
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, revision, state.Revision)
	assert.Equal(t, map[string][]byte{"value": value}, state.Values)
}

func (s *StateStoreValidationSuite) CommitsMultipleWrites(t *testing.T) {
	address := s.MakeTestAddress()
	writes := s.MakeTestWrites(17)

	_, err := s.store.Commit(s.ctx, address, ChangeSet{ExpectedRevision: InitialRevision, Writes: writes})
	if !assert.Nil(t, err) {
		return
	}

	state, err := s.store.Load(s.ctx, address)
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, writes, state.Values)
}

func (s *StateStoreValidationSuite) OverwritesValues(t *testing.T) {
	address := s.MakeTestAddress()

	first, err := s.store.Commit(s.ctx, address, ChangeSet{
		ExpectedRevision: InitialRevision,
		Writes:           map[string][]byte{"value": []byte(`1`)},
	})
	if !assert.Nil(t, err) {
		return
	}

	second, err := s.store.Commit(s.ctx, address, ChangeSet{
		ExpectedRevision: first,
		Writes:           map[string][]byte{"value": []byte(`2`)},
	})
	if !assert.Nil(t, err) {
		return
	}
	assert.NotEqual(t, first, second)

	state, err := s.store.Load(s.ctx, address)
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, second, state.Revision)
	assert.Equal(t, []byte(`2`), state.Values["value"])
}

func (s *StateStoreValidationSuite) RemovesValues(t *testing.T) {
	address := s.MakeTestAddress()

	first, err := s.store.Commit(s.ctx, address, ChangeSet{
		ExpectedRevision: InitialRevision,
		Writes:           map[string][]byte{"kept": []byte(`1`), "removed": []byte(`2`)},
	})
	if !assert.Nil(t, err) {
		return
	}

	_, err = s.store.Commit(s.ctx, address, ChangeSet{ExpectedRevision: first, Removes: []string{"removed"}})
	if !assert.Nil(t, err) {
		return
	}

	state, err := s.store.Load(s.ctx, address)
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, map[string][]byte{"kept": []byte(`1`)}, state.Values)
}

func (s *StateStoreValidationSuite) IsolatesInstances(t *testing.T) {
	one := s.MakeTestAddress()
	two := s.MakeTestAddress()

	_, err := s.store.Commit(s.ctx, one, ChangeSet{ExpectedRevision: InitialRevision, Writes: map[string][]byte{"value": []byte(`1`)}})
	if !assert.Nil(t, err) {
		return
	}

	state, err := s.store.Load(s.ctx, two)
	if !assert.Nil(t, err) {
		return
	}

	assert.Empty(t, state.Values)
	assert.Equal(t, InitialRevision, state.Revision)
}

func (s *StateStoreValidationSuite) RevisionConflictOnInitialRevision(t *testing.T) {
	address := s.MakeTestAddress()
	changes := ChangeSet{ExpectedRevision: InitialRevision, Writes: map[string][]byte{"value": s.MakeTestValue()}}

	_, err := s.store.Commit(s.ctx, address, changes)
	if !assert.Nil(t, err) {
		return
	}

	_, err = s.store.Commit(s.ctx, address, changes)
	assert.NotNil(t, err)
	assert.True(t, IsRevisionConflict(err))
}

func (s *StateStoreValidationSuite) RevisionConflictOnSubsequentRevision(t *testing.T) {
	address := s.MakeTestAddress()

	first, err := s.store.Commit(s.ctx, address, ChangeSet{ExpectedRevision: InitialRevision, Writes: map[string][]byte{"value": []byte(`1`)}})
	if !assert.Nil(t, err) {
		return
	}

	_, err = s.store.Commit(s.ctx, address, ChangeSet{ExpectedRevision: first, Writes: map[string][]byte{"value": []byte(`2`)}})
	if !assert.Nil(t, err) {
		return
	}

	_, err = s.store.Commit(s.ctx, address, ChangeSet{ExpectedRevision: first, Writes: map[string][]byte{"value": []byte(`3`)}})
	assert.NotNil(t, err)
	assert.True(t, IsRevisionConflict(err))
}

func (s *StateStoreValidationSuite) UnconditionalCommit(t *testing.T) {
	address := s.MakeTestAddress()

	_, err := s.store.Commit(s.ctx, address, ChangeSet{Writes: map[string][]byte{"value": []byte(`1`)}})
	if !assert.Nil(t, err) {
		return
	}

	revision, err := s.store.Commit(s.ctx, address, ChangeSet{Writes: map[string][]byte{"value": []byte(`2`)}})
	if !assert.Nil(t, err) {
		return
	}

	state, err := s.store.Load(s.ctx, address)
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, revision, state.Revision)
	assert.Equal(t, []byte(`2`), state.Values["value"])
}

func (s *StateStoreValidationSuite) ConflictLeavesStateUntouched(t *testing.T) {
	address := s.MakeTestAddress()

	first, err := s.store.Commit(s.ctx, address, ChangeSet{ExpectedRevision: InitialRevision, Writes: map[string][]byte{"value": []byte(`1`)}})
	if !assert.Nil(t, err) {
		return
	}

	second, err := s.store.Commit(s.ctx, address, ChangeSet{ExpectedRevision: first, Writes: map[string][]byte{"value": []byte(`2`)}})
	if !assert.Nil(t, err) {
		return
	}

	_, err = s.store.Commit(s.ctx, address, ChangeSet{
		ExpectedRevision: first,
		Writes:           map[string][]byte{"value": []byte(`3`), "other": []byte(`4`)},
	})
	if !assert.True(t, IsRevisionConflict(err)) {
		return
	}

	state, err := s.store.Load(s.ctx, address)
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, second, state.Revision)
	assert.Equal(t, map[string][]byte{"value": []byte(`2`)}, state.Values)
}
