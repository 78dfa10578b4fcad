package counter

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-contracts-go/stores/memory"
	"github.com/weegigs/wee-contracts-go/we"
)

func TestWireEncoding(t *testing.T) {
	encode := func(msg any) string {
		data, err := json.Marshal(msg)
		require.NoError(t, err)
		return string(data)
	}

	assert.Equal(t, `{"zero":{}}`, encode(InstantiateZero()))
	assert.Equal(t, `{"set":{"value":7}}`, encode(InstantiateSetTo(7)))
	assert.Equal(t, `{"inc":{}}`, encode(Increment()))
	assert.Equal(t, `{"dec":{}}`, encode(Decrement()))
	assert.Equal(t, `{"set":{"value":250}}`, encode(SetTo(250)))
	assert.Equal(t, `{"value":{}}`, encode(QueryValue()))
	assert.Equal(t, `{"value":3}`, encode(CounterResponse{Value: 3}))
}

func TestVariants(t *testing.T) {
	variant, err := Increment().Variant()
	require.NoError(t, err)
	assert.Equal(t, "inc", variant)

	variant, err = InstantiateSetTo(1).Variant()
	require.NoError(t, err)
	assert.Equal(t, "set", variant)

	_, err = ExecuteMsg{}.Variant()
	assert.Error(t, err)

	_, err = ExecuteMsg{Inc: &Inc{}, Dec: &Dec{}}.Variant()
	assert.Error(t, err)
}

func TestRawMessages(t *testing.T) {
	logger := zerolog.Nop()
	store := memory.NewStateStore()
	host := NewCounterHost(store, &logger)
	ctx := context.Background()
	address := createAddress()

	raw := func(s string) we.Data {
		return we.JsonData([]byte(s))
	}

	t.Run("accepts wire messages", func(t *testing.T) {
		_, err := host.Instantiate(ctx, address, raw(`{"set":{"value":7}}`))
		require.NoError(t, err)

		_, err = host.Execute(ctx, address, raw(`{"inc":{}}`))
		require.NoError(t, err)

		response, err := host.Query(ctx, address, raw(`{"value":{}}`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"value":8}`, string(response))

		state, err := store.Load(ctx, address)
		require.NoError(t, err)
		assert.Equal(t, []byte("8"), state.Values[Value.Key()])
	})

	malformed := []string{
		`{"set":{"value":256}}`,
		`{"set":{"value":-1}}`,
		`{"set":{"value":"7"}}`,
		`{"set":{}}`,
		`{"set":{"value":null}}`,
		`{"set":null}`,
		`{"set":{"value":1,"extra":2}}`,
		`{"set":{"Value":9}}`,
		`{"Set":{"value":9}}`,
		`{"INC":{}}`,
		`{"inc":{},"dec":null}`,
		`{"inc":{},"dec":{}}`,
		`{}`,
		`{"increment":{}}`,
		`{"inc":{}} {"dec":{}}`,
		`not json`,
	}

	for _, msg := range malformed {
		msg := msg
		t.Run("rejects "+msg, func(t *testing.T) {
			before, err := store.Load(ctx, address)
			require.NoError(t, err)

			_, err = host.Execute(ctx, address, raw(msg))
			assert.True(t, we.IsDeserializationError(err), "%s: %v", msg, err)

			after, err := store.Load(ctx, address)
			require.NoError(t, err)
			assert.Equal(t, before.Revision, after.Revision)
		})
	}

	t.Run("rejects unknown encodings", func(t *testing.T) {
		_, err := host.Query(ctx, address, we.Data{Encoding: "application/cbor", Data: []byte(`{"value":{}}`)})
		assert.True(t, we.IsDeserializationError(err))
	})
}
