package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/weegigs/wee-contracts-go/we"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewStateStore()

	t.Run("memory state store validation", func(t *testing.T) {
		suite := we.NewStateStoreValidationSuite(ctx, store)
		suite.Run(t)
	})

	t.Run("loaded state is a copy", func(t *testing.T) {
		address := we.ContractAddress("copy-test")
		_, err := store.Commit(ctx, address, we.ChangeSet{Writes: map[string][]byte{"value": []byte(`1`)}})
		if !assert.Nil(t, err) {
			return
		}

		state, err := store.Load(ctx, address)
		if !assert.Nil(t, err) {
			return
		}
		delete(state.Values, "value")

		reloaded, err := store.Load(ctx, address)
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, []byte(`1`), reloaded.Values["value"])
	})

	t.Run("honours cancelled contexts", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := store.Load(cancelled, "cancelled")
		assert.Equal(t, context.Canceled, err)

		_, err = store.Commit(cancelled, "cancelled", we.ChangeSet{Writes: map[string][]byte{"value": []byte(`1`)}})
		assert.Equal(t, context.Canceled, err)
	})
}

func TestRevisionsFollowClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC)
	store := NewStateStoreWith(WithClock(we.ClockFunc(func() time.Time { return now })))

	revision, err := store.Commit(ctx, "clocked", we.ChangeSet{Writes: map[string][]byte{"value": []byte(`1`)}})
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, we.Timestamp("2022-03-04T05:06:07Z"), revision.Timestamp())
}
