package we

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// TaggedUnion is implemented by messages encoded as one optional field per
// variant, e.g. {"set":{"value":7}}. Exactly one variant may be present.
type TaggedUnion interface {
	Variant() (string, error)
}

// SelectVariant returns the wire key of the single non-nil pointer field of a
// tagged union struct.
func SelectVariant(union any) (string, error) {
	v := reflect.ValueOf(union)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", fmt.Errorf("expected %s, got nil", NameOf(union))
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return "", fmt.Errorf("%s is not a tagged union", NameOf(union))
	}

	var present []string
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Type.Kind() != reflect.Pointer {
			continue
		}

		if v.Field(i).IsNil() {
			continue
		}

		present = append(present, variantKeyOf(field))
	}

	switch len(present) {
	case 1:
		return present[0], nil
	case 0:
		return "", fmt.Errorf("expected exactly one variant of %s, got none", NameOf(union))
	default:
		sort.Strings(present)
		return "", fmt.Errorf("expected exactly one variant of %s, got %s", NameOf(union), strings.Join(present, ", "))
	}
}

func variantKeyOf(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if name := strings.Split(tag, ",")[0]; name != "" && name != "-" {
		return name
	}

	return VariantKey(field.Name)
}

// DecodeMessage decodes an entry point message, reporting every failure as a
// DeserializationError.
func DecodeMessage(ctx context.Context, data Data, msg any) error {
	if err := UnmarshalFromData(ctx, data, msg); err != nil {
		return Deserialization(NameOf(msg), err)
	}

	if err := exactFields(data.Data, reflect.TypeOf(msg)); err != nil {
		return Deserialization(NameOf(msg), err)
	}

	if union, ok := msg.(TaggedUnion); ok {
		if _, err := union.Variant(); err != nil {
			return Deserialization(NameOf(msg), err)
		}
	}

	return nil
}

var (
	taggedUnionType = reflect.TypeOf((*TaggedUnion)(nil)).Elem()
	jsonNull        = []byte("null")
)

// exactFields checks a decoded JSON object against the struct it was decoded
// into. Keys must equal a field name exactly, non-pointer fields without
// omitempty are required and may not be null, and tagged unions carry exactly
// one key.
func exactFields(raw []byte, t reflect.Type) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return nil
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(raw, &object); err != nil {
		return err
	}

	if t.Implements(taggedUnionType) && len(object) != 1 {
		return fmt.Errorf("expected exactly one variant of %s, got %d", t.Name(), len(object))
	}

	fields := make(map[string]reflect.StructField, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, optional, ok := fieldName(field)
		if !ok {
			continue
		}

		fields[name] = field
		if optional {
			continue
		}

		value, present := object[name]
		if !present {
			return fmt.Errorf("missing field %s", name)
		}

		if bytes.Equal(bytes.TrimSpace(value), jsonNull) {
			return fmt.Errorf("field %s may not be null", name)
		}
	}

	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		field, ok := fields[key]
		if !ok {
			return fmt.Errorf("unknown field %s", key)
		}

		if err := exactFields(object[key], field.Type); err != nil {
			return errors.Wrap(err, key)
		}
	}

	return nil
}

func fieldName(field reflect.StructField) (name string, optional bool, ok bool) {
	if !field.IsExported() {
		return "", false, false
	}

	parts := strings.Split(field.Tag.Get("json"), ",")
	if parts[0] == "-" && len(parts) == 1 {
		return "", false, false
	}

	name = parts[0]
	if name == "" {
		name = field.Name
	}

	optional = field.Type.Kind() == reflect.Pointer
	for _, option := range parts[1:] {
		if option == "omitempty" {
			optional = true
		}
	}

	return name, optional, true
}
