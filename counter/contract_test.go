package counter

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-contracts-go/stores/memory"
	"github.com/weegigs/wee-contracts-go/we"
)

var (
	lk      sync.Mutex
	entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func createAddress() we.ContractAddress {
	lk.Lock()
	defer lk.Unlock()

	return we.ContractAddress("counter-" + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
}

func newClient() *Client {
	logger := zerolog.Nop()
	return NewClient(NewCounterHost(memory.NewStateStore(), &logger))
}

type test = func(t *testing.T)

func instantiated(t *testing.T, client *Client, msg InstantiateMsg) we.ContractAddress {
	address := createAddress()
	_, err := client.Instantiate(context.Background(), address, msg)
	require.NoError(t, err)

	return address
}

func setToRoundTrips(client *Client) test {
	return func(t *testing.T) {
		ctx := context.Background()
		for v := 0; v <= 255; v++ {
			address := instantiated(t, client, InstantiateSetTo(uint8(v)))

			value, err := client.Value(ctx, address)
			require.NoError(t, err)
			assert.Equal(t, uint8(v), value)
		}
	}
}

func zeroInitializes(client *Client) test {
	return func(t *testing.T) {
		address := instantiated(t, client, InstantiateZero())

		value, err := client.Value(context.Background(), address)
		require.NoError(t, err)
		assert.Equal(t, uint8(0), value)
	}
}

func reinstantiateOverwrites(client *Client) test {
	return func(t *testing.T) {
		ctx := context.Background()
		address := instantiated(t, client, InstantiateSetTo(42))

		_, err := client.Instantiate(ctx, address, InstantiateZero())
		require.NoError(t, err)

		value, err := client.Value(ctx, address)
		require.NoError(t, err)
		assert.Equal(t, uint8(0), value)
	}
}

func incrementSaturates(client *Client) test {
	return func(t *testing.T) {
		ctx := context.Background()
		for v := 0; v <= 255; v++ {
			address := instantiated(t, client, InstantiateSetTo(uint8(v)))

			_, err := client.Execute(ctx, address, Increment())
			require.NoError(t, err)

			value, err := client.Value(ctx, address)
			require.NoError(t, err)
			assert.Equal(t, SaturatingIncrement(uint8(v)), value)
		}
	}
}

func decrementSaturates(client *Client) test {
	return func(t *testing.T) {
		ctx := context.Background()
		for v := 0; v <= 255; v++ {
			address := instantiated(t, client, InstantiateSetTo(uint8(v)))

			_, err := client.Execute(ctx, address, Decrement())
			require.NoError(t, err)

			value, err := client.Value(ctx, address)
			require.NoError(t, err)
			assert.Equal(t, SaturatingDecrement(uint8(v)), value)
		}
	}
}

func setToReplaces(client *Client) test {
	return func(t *testing.T) {
		ctx := context.Background()
		address := instantiated(t, client, InstantiateSetTo(128))

		for v := 0; v <= 255; v++ {
			_, err := client.Execute(ctx, address, SetTo(uint8(v)))
			require.NoError(t, err)

			value, err := client.Value(ctx, address)
			require.NoError(t, err)
			assert.Equal(t, uint8(v), value)
		}
	}
}

func uninitializedIsMissing(client *Client) test {
	return func(t *testing.T) {
		ctx := context.Background()
		address := createAddress()

		_, err := client.Value(ctx, address)
		assert.True(t, we.IsStateMissing(err), "query: %v", err)

		for _, msg := range []ExecuteMsg{Increment(), Decrement(), SetTo(9)} {
			_, err := client.Execute(ctx, address, msg)
			assert.True(t, we.IsStateMissing(err), "execute: %v", err)
		}

		_, err = client.Value(ctx, address)
		assert.True(t, we.IsStateMissing(err), "failed executes must not write state")
	}
}

func runsScenario(client *Client) test {
	return func(t *testing.T) {
		ctx := context.Background()
		address := instantiated(t, client, InstantiateZero())

		repeat := func(msg ExecuteMsg, times int) {
			for i := 0; i < times; i++ {
				_, err := client.Execute(ctx, address, msg)
				require.NoError(t, err)
			}
		}

		repeat(Increment(), 3)
		value, err := client.Value(ctx, address)
		require.NoError(t, err)
		assert.Equal(t, uint8(3), value)

		repeat(SetTo(250), 1)
		repeat(Increment(), 10)
		value, err = client.Value(ctx, address)
		require.NoError(t, err)
		assert.Equal(t, uint8(255), value)

		repeat(Decrement(), 300)
		value, err = client.Value(ctx, address)
		require.NoError(t, err)
		assert.Equal(t, uint8(0), value)
	}
}

func advancesRevision(client *Client) test {
	return func(t *testing.T) {
		ctx := context.Background()
		address := createAddress()

		created, err := client.Instantiate(ctx, address, InstantiateZero())
		require.NoError(t, err)
		assert.NotEqual(t, we.InitialRevision, created.Revision)
		assert.Equal(t, we.DefaultResponse(), created.Response)

		updated, err := client.Execute(ctx, address, Increment())
		require.NoError(t, err)
		assert.Greater(t, updated.Revision.String(), created.Revision.String())
	}
}

func TestCounter(t *testing.T) {
	client := newClient()

	t.Run("set to round trips", setToRoundTrips(client))
	t.Run("zero initializes", zeroInitializes(client))
	t.Run("reinstantiate overwrites", reinstantiateOverwrites(client))
	t.Run("increment saturates", incrementSaturates(client))
	t.Run("decrement saturates", decrementSaturates(client))
	t.Run("set to replaces", setToReplaces(client))
	t.Run("uninitialized is missing", uninitializedIsMissing(client))
	t.Run("runs scenario", runsScenario(client))
	t.Run("advances revision", advancesRevision(client))
}

func TestSaturatingArithmetic(t *testing.T) {
	assert.Equal(t, uint8(255), SaturatingIncrement(255))
	assert.Equal(t, uint8(1), SaturatingIncrement(0))
	assert.Equal(t, uint8(0), SaturatingDecrement(0))
	assert.Equal(t, uint8(254), SaturatingDecrement(255))
}

func TestDescriptor(t *testing.T) {
	logger := zerolog.Nop()
	descriptor := NewCounterHost(memory.NewStateStore(), &logger).Descriptor()

	assert.Equal(t, ContractName, descriptor.Name)
	assert.Equal(t, ContractVersion, descriptor.Version)
	assert.NotNil(t, descriptor.Instantiate)
	assert.NotNil(t, descriptor.Execute)
	assert.NotNil(t, descriptor.Query)
}
