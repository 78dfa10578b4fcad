package we

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type TestMessage struct{}

type TestNamedMessage struct{}

func (TestNamedMessage) TypeName() string {
	return "test:named"
}

func resolvesExplicitName(t *testing.T) {
	assert.Equal(t, "test:named", NameOf(TestNamedMessage{}))
}

func resolvesImplicitName(t *testing.T) {
	assert.Equal(t, "we:test-message", NameOf(TestMessage{}))
}

func resolvesPointerName(t *testing.T) {
	assert.Equal(t, "we:test-message", NameOf(&TestMessage{}))
}

func resolvesBuiltinName(t *testing.T) {
	assert.Equal(t, "uint8", NameOf(uint8(1)))
}

func resolvesVariantKeys(t *testing.T) {
	assert.Equal(t, "zero", VariantKey("Zero"))
	assert.Equal(t, "set_to", VariantKey("SetTo"))
	assert.Equal(t, "read_value", VariantKey("ReadValue"))
}

func TestNames(t *testing.T) {
	t.Run("resolves explicit name", resolvesExplicitName)
	t.Run("resolves implicit name", resolvesImplicitName)
	t.Run("resolves pointer name", resolvesPointerName)
	t.Run("resolves builtin name", resolvesBuiltinName)
	t.Run("resolves variant keys", resolvesVariantKeys)
}
