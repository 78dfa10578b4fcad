package we

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adjust struct {
	By   int    `json:"by"`
	Note string `json:"note,omitempty"`
}

type reset struct{}

type adjustMsg struct {
	Adjust *adjust `json:"adjust,omitempty"`
	Reset  *reset  `json:"reset,omitempty"`
}

func (m adjustMsg) Variant() (string, error) {
	return SelectVariant(m)
}

func TestDecodeMessage(t *testing.T) {
	ctx := context.Background()

	decode := func(s string) (adjustMsg, error) {
		var msg adjustMsg
		err := DecodeMessage(ctx, JsonData([]byte(s)), &msg)
		return msg, err
	}

	t.Run("decodes exact keys", func(t *testing.T) {
		msg, err := decode(`{"adjust":{"by":-2}}`)
		require.NoError(t, err)
		assert.Equal(t, -2, msg.Adjust.By)

		msg, err = decode(`{"adjust":{"by":3,"note":"late"}}`)
		require.NoError(t, err)
		assert.Equal(t, "late", msg.Adjust.Note)

		msg, err = decode(`{"reset":{}}`)
		require.NoError(t, err)
		assert.NotNil(t, msg.Reset)
	})

	rejected := map[string]string{
		"missing required field":   `{"adjust":{}}`,
		"null required field":      `{"adjust":{"by":null}}`,
		"variant key case":         `{"Adjust":{"by":1}}`,
		"upper case variant":       `{"RESET":{}}`,
		"payload key case":         `{"adjust":{"By":1}}`,
		"unknown payload field":    `{"adjust":{"by":1,"extra":true}}`,
		"null variant":             `{"reset":null}`,
		"null alongside a variant": `{"reset":{},"adjust":null}`,
		"no variant":               `{}`,
		"two variants":             `{"reset":{},"adjust":{"by":1}}`,
	}

	for name, raw := range rejected {
		raw := raw
		t.Run("rejects "+name, func(t *testing.T) {
			_, err := decode(raw)
			assert.True(t, IsDeserializationError(err), "%s: %v", raw, err)
		})
	}
}
