package we

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

const JsonEncoding = "application/json"

// Data is an encoded message or response as it crosses the host boundary.
type Data struct {
	Encoding string `json:"encoding"`
	Data     []byte `json:"data"`
}

func JsonData(data []byte) Data {
	return Data{Encoding: JsonEncoding, Data: data}
}

type InvalidEncodingError struct {
	Expected string
	Actual   string
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("expected encoding %s, got %s", e.Expected, e.Actual)
}

func InvalidEncoding(expected string, actual string) error {
	return &InvalidEncodingError{
		Expected: expected,
		Actual:   actual,
	}
}

func MarshalToData(value any) (Data, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Data{}, err
	}

	return JsonData(data), nil
}

// UnmarshalFromData decodes strictly: unknown fields and trailing content are rejected.
func UnmarshalFromData(ctx context.Context, data Data, value any) error {
	if data.Encoding != JsonEncoding {
		return InvalidEncoding(JsonEncoding, data.Encoding)
	}

	decoder := json.NewDecoder(bytes.NewReader(data.Data))
	decoder.DisallowUnknownFields()
	if err := decoder.DecodeContext(ctx, value); err != nil {
		return err
	}

	if decoder.More() {
		return fmt.Errorf("unexpected content after %s value", data.Encoding)
	}

	return nil
}
