package we

import (
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
)

type Named interface {
	TypeName() string
}

// NameOf resolves a stable name for a message or state type, e.g.
// counter.ExecuteMsg becomes "counter:execute-msg".
func NameOf(value any) string {
	if typed, ok := value.(Named); ok {
		return typed.TypeName()
	}

	if value == nil {
		return "nil"
	}

	split := strings.Split(reflect.TypeOf(value).String(), ".")
	segments := make([]string, len(split))
	for i, segment := range split {
		s := strings.TrimLeft(segment, "*[]")
		segments[i] = strcase.ToKebab(s)
	}

	if len(segments) == 1 {
		return segments[0]
	}

	namespace := segments[0]
	name := strings.Join(segments[1:], "-")

	return namespace + ":" + name
}

// VariantKey is the wire key of a tagged union variant: InstantiateMsg.Zero is "zero".
func VariantKey(name string) string {
	return strcase.ToSnake(name)
}
